package models

// URLEntry is one persisted source URL.
type URLEntry struct {
	URL string `json:"url"`
}

// URLList is the on-disk shape of the RSS and article URL documents.
type URLList struct {
	URLs []URLEntry `json:"urls"`
}
