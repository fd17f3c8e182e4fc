package core

import "encoding/json"

// Seed is the backup material of a wallet: its phrase and birthday height.
type Seed struct {
	Phrase   string `json:"seed"`
	Birthday uint64 `json:"birthday"`
}

// Dump renders the seed as the JSON object handed to hosts.
func (s Seed) Dump() string {
	b, err := json.Marshal(s)
	if err != nil {
		// Marshal of a string and an integer cannot fail.
		panic(err)
	}
	return string(b)
}
