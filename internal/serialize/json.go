// Package serialize implements the JSON and statusline output formats
// (spec.md §4.8): a stable-schema row list for --format json, and a
// compact single-line projection for the statusline subcommand.
package serialize

import (
	"encoding/json"

	"github.com/wtstatus/wtstatus/internal/statusrow"
	"github.com/wtstatus/wtstatus/internal/symbols"
)

// CommitJSON is the commit.{timestamp,subject} pair.
type CommitJSON struct {
	Timestamp int64  `json:"timestamp"`
	Subject   string `json:"subject"`
}

// MainJSON is the row's relationship to the effective integration target.
type MainJSON struct {
	Ahead             int     `json:"ahead"`
	Behind            int     `json:"behind"`
	State             *string `json:"state"`
	IntegrationReason *string `json:"integration_reason"`
}

// DiffJSON is an added/deleted line-count pair.
type DiffJSON struct {
	Added   int `json:"added"`
	Deleted int `json:"deleted"`
}

// WorkingTreeJSON mirrors the working-tree status flags.
type WorkingTreeJSON struct {
	Untracked bool `json:"untracked"`
	Modified  bool `json:"modified"`
	Staged    bool `json:"staged"`
	Renamed   bool `json:"renamed"`
	Deleted   bool `json:"deleted"`
}

// UpstreamJSON is present only when the row has an active remote-tracking
// branch (spec.md §4.8: "upstream is omitted when not active").
type UpstreamJSON struct {
	Remote string `json:"remote"`
	Ahead  int    `json:"ahead"`
	Behind int    `json:"behind"`
}

// PRStatusJSON is the CI/PR summary; the field is `null` in the row when
// not yet loaded (spec.md §4.8).
type PRStatusJSON struct {
	State  string `json:"state"`
	URL    string `json:"url,omitempty"`
	Stale  bool   `json:"stale"`
	Source string `json:"source"`
}

// RowJSON is one row of the --format json output array.
type RowJSON struct {
	HeadSHA           string           `json:"head_sha"`
	ShortSHA          string           `json:"short_sha"`
	Branch            string           `json:"branch"`
	Kind              string           `json:"kind"`
	IsMain            bool             `json:"is_main"`
	IsCurrent         bool             `json:"is_current"`
	IsPrevious        bool             `json:"is_previous"`
	Path              string           `json:"path,omitempty"`
	Detached          bool             `json:"detached"`
	Locked            *string          `json:"locked,omitempty"`
	Prunable          *string          `json:"prunable,omitempty"`
	Commit            *CommitJSON      `json:"commit,omitempty"`
	Main              MainJSON         `json:"main"`
	BranchDiff        *DiffJSON        `json:"branch_diff,omitempty"`
	WorkingTreeDiff   *DiffJSON        `json:"working_tree_diff,omitempty"`
	WorkingTree       *WorkingTreeJSON `json:"working_tree,omitempty"`
	Upstream          *UpstreamJSON    `json:"upstream,omitempty"`
	PRStatus          *PRStatusJSON    `json:"pr_status"`
	URL               string           `json:"url,omitempty"`
	URLActive         *bool            `json:"url_active,omitempty"`
	IsPotentiallyRemovable bool        `json:"is_potentially_removable"`
	StatusSymbols     string           `json:"status_symbols"`
	Statusline        string           `json:"statusline"`
}

// RowsToJSON renders rows into their JSON-schema form. Field order within
// each row object follows Go's struct-field order, which encoding/json
// preserves, so repeated invocations over identical state produce
// byte-identical output (spec.md §8, given a fixed SOURCE_DATE_EPOCH).
func RowsToJSON(rows []*statusrow.Row) []RowJSON {
	out := make([]RowJSON, len(rows))
	for i, r := range rows {
		out[i] = rowToJSON(r)
	}
	return out
}

// Marshal serializes rows as an indented JSON array.
func Marshal(rows []*statusrow.Row) ([]byte, error) {
	return json.MarshalIndent(RowsToJSON(rows), "", "  ")
}

func rowToJSON(r *statusrow.Row) RowJSON {
	r.RLock()

	j := RowJSON{
		HeadSHA:    r.HeadSHA,
		ShortSHA:   shortSHA(r.HeadSHA),
		Branch:     r.Branch,
		Kind:       kindString(r.Kind),
		IsMain:     r.IsMain,
		IsCurrent:  r.IsCurrent,
		IsPrevious: r.IsPrevious,
		Path:       r.Path,
		Detached:   r.Detached,
	}

	if r.LockedSet {
		locked := r.Locked
		j.Locked = &locked
	}
	if r.PrunableSet {
		prunable := r.Prunable
		j.Prunable = &prunable
	}
	if r.Commit.Loaded {
		j.Commit = &CommitJSON{Timestamp: r.Commit.Timestamp, Subject: r.Commit.Subject}
	}

	j.Main = MainJSON{Ahead: r.Counts.Ahead, Behind: r.Counts.Behind}
	if r.MainState != "" {
		state := string(r.MainState)
		j.Main.State = &state
	}
	if r.IntegrationReason != "" {
		reason := string(r.IntegrationReason)
		j.Main.IntegrationReason = &reason
	}

	if r.BranchDiff.Loaded {
		j.BranchDiff = &DiffJSON{Added: r.BranchDiff.Added, Deleted: r.BranchDiff.Deleted}
	}
	if r.WorkingTreeDiff.Loaded {
		j.WorkingTreeDiff = &DiffJSON{Added: r.WorkingTreeDiff.Added, Deleted: r.WorkingTreeDiff.Deleted}
	}
	if r.WorkingTree.Loaded {
		j.WorkingTree = &WorkingTreeJSON{
			Untracked: r.WorkingTree.Untracked,
			Modified:  r.WorkingTree.Modified,
			Staged:    r.WorkingTree.Staged,
			Renamed:   r.WorkingTree.Renamed,
			Deleted:   r.WorkingTree.Deleted,
		}
	}
	if r.Upstream.Loaded && r.Upstream.Active {
		j.Upstream = &UpstreamJSON{Remote: r.Upstream.RemoteName, Ahead: r.Upstream.Ahead, Behind: r.Upstream.Behind}
	}
	if r.PR.Loaded {
		j.PRStatus = &PRStatusJSON{
			State:  string(r.PR.State),
			URL:    r.PR.URL,
			Stale:  r.PR.Stale,
			Source: string(r.PR.Source),
		}
	}

	j.URL = r.URL
	if r.URLActiveLoaded {
		active := r.URLActive
		j.URLActive = &active
	}

	symbolsSnapshot := r.Symbols
	r.RUnlock()

	j.IsPotentiallyRemovable = r.IsPotentiallyRemovable()
	j.StatusSymbols = symbols.Render(symbolsSnapshot)
	j.Statusline = Build(r, 0)

	return j
}

func shortSHA(sha string) string {
	if len(sha) <= 7 {
		return sha
	}
	return sha[:7]
}

func kindString(k statusrow.Kind) string {
	if k == statusrow.KindBranch {
		return "branch"
	}
	return "worktree"
}
