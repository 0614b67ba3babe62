package main

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/wtstatus/wtstatus/internal/config"
	"github.com/wtstatus/wtstatus/internal/forge"
	"github.com/wtstatus/wtstatus/internal/git"
	"github.com/wtstatus/wtstatus/internal/integration"
	"github.com/wtstatus/wtstatus/internal/probe"
	"github.com/wtstatus/wtstatus/internal/scheduler"
	"github.com/wtstatus/wtstatus/internal/statusrow"
	"github.com/wtstatus/wtstatus/internal/symbols"
	"github.com/wtstatus/wtstatus/internal/worktree"
)

// collectOptions configures which optional probes a collect pass runs,
// mirroring the `list`/`statusline` flag surface (spec.md §6).
type collectOptions struct {
	IncludeBranches bool   // --branches: add rows for local branches with no worktree
	BranchFilter    string // optional fuzzy filter applied to --branches rows
	Full            bool   // --full: run the heavier diff/conflict probes
	FetchCI         bool   // --fetch-ci: query the configured forge for CI/PR status
	OnUpdate        func(rowIdx int, row *statusrow.Row)
}

// collectResult is the finalized row set plus any probes that never
// completed before the caller's context was cancelled or timed out.
type collectResult struct {
	Rows    []*statusrow.Row
	Missing []scheduler.Missing
}

// rowSet is the result of listing worktrees (and optional branch-only
// rows) and scheduling their probes, before the tasks have actually run —
// split out of collect so a progressive caller can build its renderer
// skeleton from len(Rows) before probes start streaming updates.
type rowSet struct {
	Rows      []*statusrow.Row
	Tasks     []probe.Task
	TargetSHA string
}

// prepareRowSet lists worktrees/branches and builds the probe task list,
// without running any of them yet.
func prepareRowSet(ctx context.Context, repoPath string, cfg *config.Config, opts collectOptions) (*rowSet, error) {
	worktrees, err := git.ListWorktrees(ctx, repoPath)
	if err != nil {
		return nil, err
	}

	localTarget := git.DefaultBranch(ctx, repoPath)
	target, err := integration.EffectiveTarget(ctx, repoPath, localTarget)
	if err != nil {
		target = localTarget
	}
	targetSHA, _ := git.ResolveRef(ctx, repoPath, target)

	rows := buildRows(worktrees, repoPath)

	if opts.IncludeBranches {
		rows = append(rows, branchOnlyRows(ctx, repoPath, worktrees, opts.BranchFilter)...)
	}

	originURL, _ := git.GetOriginURL(ctx, repoPath)
	var f forge.Forge
	if opts.FetchCI && originURL != "" {
		f = forge.Detect(originURL)
	}

	tasks := buildTasks(rows, repoPath, target, cfg, opts, f, originURL)

	return &rowSet{Rows: rows, Tasks: tasks, TargetSHA: targetSHA}, nil
}

// runRowSet executes every task in set, finalizing each row as its probes
// land, and returns the rows in display order plus anything left
// outstanding when ctx was cancelled.
func runRowSet(ctx context.Context, set *rowSet, onUpdate func(rowIdx int, row *statusrow.Row)) *collectResult {
	missing := scheduler.Run(ctx, set.Tasks, func(u scheduler.Update) {
		finalizeRow(u.Row, set.TargetSHA)
		if onUpdate != nil {
			onUpdate(u.RowIdx, u.Row)
		}
	})

	for _, r := range set.Rows {
		finalizeRow(r, set.TargetSHA)
	}

	orderRows(set.Rows)

	return &collectResult{Rows: set.Rows, Missing: missing}
}

// collect lists worktrees (and, if requested, branch-only rows), schedules
// every probe the options call for, drains results into each row, and
// returns the rows in display order (spec.md §3's invariants).
func collect(ctx context.Context, repoPath string, cfg *config.Config, opts collectOptions) (*collectResult, error) {
	set, err := prepareRowSet(ctx, repoPath, cfg, opts)
	if err != nil {
		return nil, err
	}
	return runRowSet(ctx, set, opts.OnUpdate), nil
}

// buildRows populates one row per linked worktree, in listing order (the
// main worktree is always first, per `git worktree list --porcelain`).
func buildRows(worktrees []git.Worktree, workDir string) []*statusrow.Row {
	rows := make([]*statusrow.Row, len(worktrees))
	for i, wt := range worktrees {
		rows[i] = &statusrow.Row{
			HeadSHA:                wt.Head,
			Branch:                 wt.Branch,
			Kind:                   statusrow.KindWorktree,
			Path:                   wt.Path,
			IsMain:                 i == 0,
			IsCurrent:              samePath(wt.Path, workDir),
			Detached:               wt.Detached,
			Locked:                 wt.Locked,
			LockedSet:              wt.LockedSet,
			Prunable:               wt.Prunable,
			PrunableSet:            wt.PrunableSet,
			BranchWorktreeMismatch: branchWorktreeMismatch(wt),
		}
	}
	return rows
}

// branchOnlyRows adds one row per local branch that has no linked
// worktree (the --branches flag, spec.md §2). filter, when non-empty,
// fuzzy-narrows the candidate branches (supplemental: disambiguating a
// typed prefix shared by several branches) the way the teacher's
// interactive pickers use sahilm/fuzzy, without an interactive prompt.
func branchOnlyRows(ctx context.Context, repoPath string, worktrees []git.Worktree, filter string) []*statusrow.Row {
	withWorktree := make(map[string]bool, len(worktrees))
	for _, wt := range worktrees {
		if wt.Branch != "" {
			withWorktree[wt.Branch] = true
		}
	}

	branches, err := git.ListLocalBranches(ctx, repoPath)
	if err != nil {
		return nil
	}

	candidates := make([]string, 0, len(branches))
	for _, b := range branches {
		if !withWorktree[b] {
			candidates = append(candidates, b)
		}
	}
	candidates = fuzzyFilterBranches(candidates, filter)

	var rows []*statusrow.Row
	for _, b := range candidates {
		sha, _ := git.ResolveRef(ctx, repoPath, b)
		rows = append(rows, &statusrow.Row{
			HeadSHA: sha,
			Branch:  b,
			Kind:    statusrow.KindBranch,
		})
	}
	return rows
}

type branchSource []string

func (s branchSource) String(i int) string { return s[i] }
func (s branchSource) Len() int            { return len(s) }

// fuzzyFilterBranches ranks candidates against filter and returns them
// best-match-first. An empty filter is a no-op (every candidate, original
// order).
func fuzzyFilterBranches(candidates []string, filter string) []string {
	if filter == "" {
		return candidates
	}
	matches := fuzzy.FindFrom(filter, branchSource(candidates))
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = candidates[m.Index]
	}
	return out
}

func samePath(a, b string) bool {
	ca, err1 := filepath.Abs(a)
	cb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return a == b
	}
	return ca == cb
}

// branchWorktreeMismatch flags a worktree whose directory name doesn't
// match its checked-out branch, the usual sign someone moved or repurposed
// a worktree directory by hand (position 6's ⚑ glyph, spec.md §4.4).
func branchWorktreeMismatch(wt git.Worktree) bool {
	if wt.Branch == "" {
		return false
	}
	base := filepath.Base(wt.Path)
	expected := strings.ReplaceAll(wt.Branch, "/", "-")
	return base != wt.Branch && base != expected
}

// buildTasks schedules, per row, the probe set its kind and the requested
// options call for (spec.md §4.1's catalog).
func buildTasks(rows []*statusrow.Row, repoPath, target string, cfg *config.Config, opts collectOptions, f forge.Forge, originURL string) []probe.Task {
	var tasks []probe.Task
	urlTemplate := cfg.List.URL
	repo := git.ExtractRepoNameFromURL(originURL)

	for i, r := range rows {
		wtPath := r.Path
		if r.Kind == statusrow.KindBranch {
			wtPath = repoPath
		}
		base := probe.Task{
			RowIdx:       i,
			Row:          r,
			RepoPath:     repoPath,
			WorktreePath: wtPath,
			Branch:       r.Branch,
			Target:       target,
		}
		add := func(k probe.Kind) {
			t := base
			t.Kind = k
			tasks = append(tasks, t)
		}

		if r.Branch == "" {
			continue
		}

		add(probe.CommitDetails)
		add(probe.AheadBehind)
		add(probe.CommittedTreesMatch)
		add(probe.HasFileChanges)
		add(probe.IsAncestor)
		add(probe.Upstream)
		add(probe.UserMarker)

		if r.Kind == statusrow.KindWorktree {
			add(probe.GitOperation)
		}

		if opts.Full {
			add(probe.BranchDiff)
			add(probe.WouldMergeAdd)
			if r.Kind == statusrow.KindWorktree {
				add(probe.WorkingTreeDiff)
				add(probe.MergeTreeConflicts)
				add(probe.WorkingTreeConflicts)
			}
		}

		if opts.FetchCI {
			t := base
			t.Kind = probe.CiStatus
			t.Forge = f
			t.RepoURL = originURL
			tasks = append(tasks, t)
		}

		if urlTemplate != "" && r.Kind == statusrow.KindWorktree {
			t := base
			t.Kind = probe.UrlStatus
			t.URLTemplate = worktree.ExpandTemplate(urlTemplate, repo, r.Branch)
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// finalizeRow recomputes every row field derived from already-loaded probe
// results: the SameCommit signal (cheap enough to redo on every update),
// the integration-state analyzer's verdict, and the status-symbol grid.
// Pure given the row's current state, so it is safe to call after every
// probe and once more after the drain loop finishes (spec.md §3: "a row's
// status_symbols may be recomputed; every recomputation is idempotent").
func finalizeRow(r *statusrow.Row, targetSHA string) {
	r.Lock()
	r.Signals.SameCommit = integration.SameCommit(r.HeadSHA, targetSHA)
	r.Unlock()

	r.RLock()
	signals := r.Signals
	counts := r.Counts
	isMain := r.IsMain
	headSHA := r.HeadSHA
	mergeConflictsDone := r.MergeConflictsDone
	hasMergeConflicts := r.HasMergeConflicts
	r.RUnlock()

	mainState, reason := evaluateMainState(signals, counts, isMain, headSHA, mergeConflictsDone, hasMergeConflicts)

	r.Lock()
	r.MainState = mainState
	r.IntegrationReason = reason
	r.Unlock()

	sym := symbols.Compute(r)
	r.Lock()
	r.Symbols = sym
	r.Unlock()
}

func evaluateMainState(signals statusrow.IntegrationSignals, counts statusrow.Counts, isMain bool, headSHA string, mergeConflictsDone, hasMergeConflicts bool) (statusrow.MainState, statusrow.IntegrationReason) {
	if isMain {
		return statusrow.MainStateIsMain, statusrow.ReasonNone
	}
	if headSHA == "" {
		return statusrow.MainStateEmpty, statusrow.ReasonNone
	}

	res := integration.Evaluate(signals, counts)
	switch {
	case res.Orphan:
		return statusrow.MainStateOrphan, statusrow.ReasonNone
	case res.Integrated:
		return statusrow.MainStateIntegrated, res.Reason
	case mergeConflictsDone && hasMergeConflicts:
		return statusrow.MainStateWouldConflict, statusrow.ReasonNone
	case !counts.Loaded:
		return "", statusrow.ReasonNone
	case counts.Ahead > 0 && counts.Behind > 0:
		return statusrow.MainStateDiverged, statusrow.ReasonNone
	case counts.Ahead > 0:
		return statusrow.MainStateAhead, statusrow.ReasonNone
	case counts.Behind > 0:
		return statusrow.MainStateBehind, statusrow.ReasonNone
	default:
		return statusrow.MainStateSameCommit, statusrow.ReasonNone
	}
}

// orderRows applies spec.md §3's row ordering invariant: main first,
// current worktree second, the rest by descending HEAD commit timestamp.
func orderRows(rows []*statusrow.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := rankRow(rows[i]), rankRow(rows[j])
		if ri != rj {
			return ri < rj
		}
		return rows[i].Commit.Timestamp > rows[j].Commit.Timestamp
	})
}

func rankRow(r *statusrow.Row) int {
	switch {
	case r.IsMain:
		return 0
	case r.IsCurrent:
		return 1
	default:
		return 2
	}
}
