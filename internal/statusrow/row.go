// Package statusrow holds the data model shared by the probe, integration,
// symbol, layout, row-formatting, and rendering packages: a Row per
// worktree (or per branch, for branches without a worktree), progressively
// populated as probe results arrive.
package statusrow

import "sync"

// Kind distinguishes a row backed by a linked worktree from a row standing
// in for a local branch that has no worktree.
type Kind int

const (
	KindWorktree Kind = iota
	KindBranch
)

// GitOperation is an in-progress repository operation detected on a
// worktree's git-dir.
type GitOperation int

const (
	GitOperationNone GitOperation = iota
	GitOperationRebase
	GitOperationMerge
)

// TriState models a value that may not have been probed yet, distinct from
// a probed-and-negative value (spec.md §3: pr_status, has_working_tree_conflicts).
type TriState int

const (
	// NotLoaded means the probe has not completed (or was not scheduled).
	NotLoaded TriState = iota
	// Clean/None/Negative: the probe completed and found nothing.
	Negative
	// Positive: the probe completed and found something.
	Positive
)

// WorkingTreeConflictState is the tri-state result of the WorkingTreeConflicts
// probe: a plain negative isn't enough information to distinguish "clean"
// from "dirty but would merge cleanly".
type WorkingTreeConflictState int

const (
	WorkingTreeConflictsNotLoaded WorkingTreeConflictState = iota
	WorkingTreeConflictsClean
	WorkingTreeConflictsDirtyClean
	WorkingTreeConflictsDirtyConflict
)

// CommitDetails is HEAD's timestamp and subject.
type CommitDetails struct {
	Timestamp int64
	Subject   string
	Loaded    bool
}

// Counts is ahead/behind vs the effective integration target, plus orphan
// detection (no merge base).
type Counts struct {
	Ahead    int
	Behind   int
	IsOrphan bool
	Loaded   bool
}

// LineDiff is an added/deleted line-count pair.
type LineDiff struct {
	Added   int
	Deleted int
	Loaded  bool
}

// WorkingTreeStatus mirrors git status flags for the worktree.
type WorkingTreeStatus struct {
	Untracked  bool
	Modified   bool
	Staged     bool
	Renamed    bool
	Deleted    bool
	Conflicted bool
	Loaded     bool
}

// IntegrationSignals are the five short-circuit signals computed by the
// integration-state analyzer (spec.md §4.3), each independently Unknown
// until probed.
type IntegrationSignals struct {
	SameCommit      TriState
	IsAncestor      TriState
	HasAddedChanges TriState
	TreesMatch      TriState
	WouldMergeAdd   TriState
}

// Upstream is the remote-tracking counterpart of a local branch.
type Upstream struct {
	RemoteName string
	Ahead      int
	Behind     int
	Active     bool // remote-tracking ref exists
	Loaded     bool
}

// CIState mirrors internal/forge.CIState, duplicated here so statusrow has
// no dependency on the network-facing forge package.
type CIState string

const (
	CIPassed    CIState = "passed"
	CIRunning   CIState = "running"
	CIFailed    CIState = "failed"
	CIConflicts CIState = "conflicts"
	CINone      CIState = "none"
)

// CISource mirrors internal/forge.CISource.
type CISource string

const (
	SourcePullRequest CISource = "pr"
	SourceBranch      CISource = "branch"
)

// PRStatus is tri-state: NotLoaded (spinner), Loaded+absent (nothing
// rendered), or Loaded+present (the CI summary).
type PRStatus struct {
	Loaded bool
	State  CIState
	URL    string
	Stale  bool
	Source CISource
}

// MainState is the row's relationship to the effective integration target,
// used both for the symbol engine and the JSON `main.state` field.
type MainState string

const (
	MainStateIsMain        MainState = "is_main"
	MainStateSameCommit    MainState = "same_commit"
	MainStateAhead         MainState = "ahead"
	MainStateBehind        MainState = "behind"
	MainStateDiverged      MainState = "diverged"
	MainStateEmpty         MainState = "empty"
	MainStateIntegrated    MainState = "integrated"
	MainStateOrphan        MainState = "orphan"
	MainStateWouldConflict MainState = "would_conflict"
)

// IntegrationReason is the positive signal that earned MainStateIntegrated,
// assigned by priority order (spec.md §4.3).
type IntegrationReason string

const (
	ReasonNone              IntegrationReason = ""
	ReasonSameCommit        IntegrationReason = "same-commit"
	ReasonAncestor          IntegrationReason = "ancestor"
	ReasonNoAddedChanges    IntegrationReason = "no-added-changes"
	ReasonTreesMatch        IntegrationReason = "trees-match"
	ReasonMergeAddsNothing  IntegrationReason = "merge-adds-nothing"
)

// Divergence is the shared shape of "main divergence" (position 4) and
// "upstream divergence" (position 5) in the status-symbol grid.
type Divergence int

const (
	DivergenceNone Divergence = iota
	DivergenceIsMain
	DivergenceAhead
	DivergenceBehind
	DivergenceDiverged
)

// StatusSymbols is the fixed-width glyph grid computed by internal/symbols.
type StatusSymbols struct {
	Staged             bool   // position 0: '+'
	Modified           bool   // position 1: '!'
	Untracked          bool   // position 2: '?'
	BranchOp           rune   // position 3: one of ✘⤴⤵✗⊂_–∅ or 0
	MainDivergence     rune   // position 4: ^↑↓↕ or 0
	UpstreamDivergence rune   // position 5: ⇡⇣⇅| or 0
	WorktreeAttr       rune   // position 6: ⚑⊟⊞/ or 0
	UserMarker         string // position 7: up to 2 chars
}

// Row is one worktree or branch, progressively populated by probe results.
// After creation, probe tasks (internal/probe) and the drain loop
// (internal/scheduler) mutate a Row under Lock/Unlock; callers reading a Row
// concurrently with them must use RLock/RUnlock.
type Row struct {
	mu sync.RWMutex

	// Identity — immediately known from the worktree/branch listing.
	HeadSHA                string
	Branch                 string
	Kind                   Kind
	Path                   string // worktree path; empty for KindBranch
	IsMain                 bool
	IsCurrent              bool
	IsPrevious             bool
	Detached               bool
	Locked                 string // reason; "" if not locked
	LockedSet              bool
	Prunable               string // reason; "" if not prunable
	PrunableSet            bool
	GitOp                  GitOperation
	BranchWorktreeMismatch bool

	// Progressively populated.
	Commit             CommitDetails
	Counts             Counts
	BranchDiff         LineDiff
	WorkingTreeDiff    LineDiff
	WorkingTree        WorkingTreeStatus
	HasMergeConflicts  bool
	MergeConflictsDone bool
	WorkingConflicts   WorkingTreeConflictState
	Signals            IntegrationSignals
	Upstream           Upstream
	PR                 PRStatus
	URL                string
	URLActive          bool
	URLActiveLoaded    bool

	// Derived.
	Symbols           StatusSymbols
	MainState         MainState
	IntegrationReason IntegrationReason
	UserMarker        string
	UserMarkerLoaded  bool
}

// ShortSHA returns the first 7 characters of HeadSHA, the conventional
// short-hash length.
func (r *Row) ShortSHA() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.HeadSHA) <= 7 {
		return r.HeadSHA
	}
	return r.HeadSHA[:7]
}

// Lock/Unlock/RLock/RUnlock expose the row's mutex to the drain loop and
// renderer so a single Row can be mutated by the scheduler and read by the
// renderer without a data race, per spec.md §5 ("no lock is held across
// subprocess calls" — callers take the lock only to apply or read fields).
func (r *Row) Lock()    { r.mu.Lock() }
func (r *Row) Unlock()  { r.mu.Unlock() }
func (r *Row) RLock()   { r.mu.RLock() }
func (r *Row) RUnlock() { r.mu.RUnlock() }

// IsPotentiallyRemovable reports whether the row is safe to delete: its
// branch is integrated and its working tree (if any) is clean.
func (r *Row) IsPotentiallyRemovable() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.MainState != MainStateIntegrated {
		return false
	}
	if r.Kind != KindWorktree {
		return true
	}
	if !r.WorkingTree.Loaded {
		return false
	}
	return !r.WorkingTree.Untracked && !r.WorkingTree.Modified &&
		!r.WorkingTree.Staged && !r.WorkingTree.Conflicted
}
