package repository

// KeyValueStore holds string values under string keys, in the manner of
// browser Web Storage. A missing key is reported with ok == false.
type KeyValueStore interface {
	GetItem(key string) (value string, ok bool, err error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}
