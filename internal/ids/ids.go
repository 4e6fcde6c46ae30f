package ids

import "github.com/segmentio/ksuid"

// New returns a new sortable unique id. Used for entity ids and session ids.
func New() string {
	return ksuid.New().String()
}
