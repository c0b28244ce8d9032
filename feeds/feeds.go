// Package feeds looks URLs up in threat-intelligence feeds. Lookups are
// best effort: failures come back as an unlisted Result carrying a note.
package feeds

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

const (
	NoteAPIKeyMissing = "api_key_missing"
	NoteTimeout       = "timeout"
	NoteAPIError      = "api_error"
	NoteException     = "exception"
	NoteNotReady      = "database_not_ready"
)

type Threat struct {
	ThreatType   string `json:"threatType"`
	PlatformType string `json:"platformType"`
}

type Result struct {
	Listed  bool     `json:"listed"`
	Details []Threat `json:"details"`
	Source  string   `json:"source"`
	Note    string   `json:"note,omitempty"`
}

// MarshalJSON reports details as an array whenever a feed answered, even
// with no matches, and leaves the key out when it never did.
func (r Result) MarshalJSON() ([]byte, error) {
	type result Result
	if r.Details != nil {
		return json.Marshal(result(r))
	}
	return json.Marshal(struct {
		result
		Details []Threat `json:"details,omitempty"`
	}{result: result(r)})
}

type Lookup interface {
	Lookup(ctx context.Context, url string) Result
}

// Multi queries every lookup concurrently and merges the answers.
type Multi []Lookup

func (m Multi) Lookup(ctx context.Context, url string) Result {
	if len(m) == 0 {
		return Result{}
	}

	results := make([]Result, len(m))
	var wg sync.WaitGroup
	for i, l := range m {
		wg.Add(1)
		go func(i int, l Lookup) {
			defer wg.Done()
			results[i] = l.Lookup(ctx, url)
		}(i, l)
	}
	wg.Wait()

	return merge(results)
}

func merge(results []Result) Result {
	out := Result{Source: results[0].Source}
	var notes []string
	sourceSet := false

	for _, r := range results {
		if r.Details != nil && out.Details == nil {
			out.Details = []Threat{}
		}
		if r.Listed {
			out.Listed = true
			out.Details = append(out.Details, r.Details...)
			if !sourceSet {
				out.Source = r.Source
				sourceSet = true
			}
		}
		if r.Note != "" {
			notes = append(notes, r.Note)
		}
	}
	if out.Listed && out.Details == nil {
		out.Details = []Threat{}
	}
	out.Note = strings.Join(notes, ",")
	return out
}
