package probe

import (
	"context"
	"net"
	"time"

	"github.com/wtstatus/wtstatus/internal/forge"
	"github.com/wtstatus/wtstatus/internal/git"
	"github.com/wtstatus/wtstatus/internal/statusrow"
)

// Task names a single (row, probe kind) unit of work plus the inputs
// needed to form the git command, per spec.md §5 ("probe tasks hold only
// read-only snapshots needed to form their git command").
type Task struct {
	RowIdx int
	Kind   Kind
	Row    *statusrow.Row

	RepoPath     string // shared, repo-scoped probes
	WorktreePath string // per-worktree probes; equals RepoPath for branch rows
	Branch       string
	Target       string // effective integration target ref

	URLTemplate string
	Forge       forge.Forge
	RepoURL     string
}

// Execute runs one probe and applies its result to Task.Row under lock.
// It never returns a panic-worthy error: a probe failure is recorded as a
// TaskError and the row's field keeps its documented default.
func Execute(ctx context.Context, t Task) *TaskError {
	ctx, cancel := WithTaskTimeout(ctx)
	defer cancel()

	var err error
	switch t.Kind {
	case CommitDetails:
		err = execCommitDetails(ctx, t)
	case AheadBehind:
		err = execAheadBehind(ctx, t)
	case CommittedTreesMatch:
		err = execTreesMatch(ctx, t)
	case HasFileChanges:
		err = execHasFileChanges(ctx, t)
	case WouldMergeAdd:
		err = execWouldMergeAdd(ctx, t)
	case IsAncestor:
		err = execIsAncestor(ctx, t)
	case BranchDiff:
		err = execBranchDiff(ctx, t)
	case WorkingTreeDiff:
		err = execWorkingTreeDiff(ctx, t)
	case MergeTreeConflicts:
		err = execMergeTreeConflicts(ctx, t)
	case WorkingTreeConflicts:
		err = execWorkingTreeConflicts(ctx, t)
	case GitOperation:
		err = execGitOperation(ctx, t)
	case UserMarker:
		err = execUserMarker(ctx, t)
	case Upstream:
		err = execUpstream(ctx, t)
	case CiStatus:
		err = execCiStatus(ctx, t)
	case UrlStatus:
		err = execUrlStatus(ctx, t)
	}

	if err != nil {
		return &TaskError{ItemIdx: t.RowIdx, Kind: t.Kind, Message: err.Error(), Cause: ClassifyErr(ctx, err)}
	}
	return nil
}

func execCommitDetails(ctx context.Context, t Task) error {
	// A branch row with no linked worktree has nothing checked out, so
	// "HEAD" would resolve to whatever the repo's primary worktree has
	// checked out instead; use the branch name directly in that case.
	ref := "HEAD"
	if t.Row.Kind == statusrow.KindBranch && t.Branch != "" {
		ref = t.Branch
	}
	d, err := git.GetCommitDetails(ctx, t.WorktreePath, ref)
	if err != nil {
		return err
	}
	t.Row.Lock()
	t.Row.Commit = statusrow.CommitDetails{Timestamp: d.Timestamp, Subject: d.Subject, Loaded: true}
	t.Row.Unlock()
	return nil
}

func execAheadBehind(ctx context.Context, t Task) error {
	// rev-list's "..." form is a set-level symmetric difference: it needs no
	// common ancestor and returns non-zero counts even for unrelated
	// histories, so orphan detection can't ride on its error path. Check
	// merge-base explicitly instead.
	isOrphan := !git.HasMergeBase(ctx, t.WorktreePath, t.Target, t.Branch)

	ahead, behind, err := git.AheadBehind(ctx, t.WorktreePath, t.Branch, t.Target)
	if err != nil {
		return err
	}
	t.Row.Lock()
	t.Row.Counts = statusrow.Counts{Ahead: ahead, Behind: behind, IsOrphan: isOrphan, Loaded: true}
	t.Row.Unlock()
	return nil
}

func execTreesMatch(ctx context.Context, t Task) error {
	branchTree, err := git.TreeSHA(ctx, t.WorktreePath, t.Branch)
	if err != nil {
		return err
	}
	targetTree, err := git.TreeSHA(ctx, t.WorktreePath, t.Target)
	if err != nil {
		return err
	}
	match := branchTree == targetTree
	t.Row.Lock()
	t.Row.Signals.TreesMatch = boolToTri(match)
	t.Row.Unlock()
	return nil
}

func execHasFileChanges(ctx context.Context, t Task) error {
	empty, err := git.ThreeDotDiffEmpty(ctx, t.WorktreePath, t.Target, t.Branch)
	if err != nil {
		return err
	}
	t.Row.Lock()
	t.Row.Signals.HasAddedChanges = boolToTri(empty)
	t.Row.Unlock()
	return nil
}

func execWouldMergeAdd(ctx context.Context, t Task) error {
	adds, err := git.WouldMergeAdd(ctx, t.WorktreePath, t.Target, t.Branch)
	if err != nil {
		return err
	}
	t.Row.Lock()
	t.Row.Signals.WouldMergeAdd = boolToTri(adds)
	t.Row.Unlock()
	return nil
}

func execIsAncestor(ctx context.Context, t Task) error {
	anc, err := git.IsAncestor(ctx, t.WorktreePath, t.Branch, t.Target)
	if err != nil {
		return err
	}
	t.Row.Lock()
	t.Row.Signals.IsAncestor = boolToTri(anc)
	t.Row.Unlock()
	return nil
}

func execBranchDiff(ctx context.Context, t Task) error {
	total, err := git.TwoDotNumstat(ctx, t.WorktreePath, t.Target, t.Branch)
	if err != nil {
		return err
	}
	t.Row.Lock()
	t.Row.BranchDiff = statusrow.LineDiff{Added: total.Added, Deleted: total.Deleted, Loaded: true}
	t.Row.Unlock()
	return nil
}

func execWorkingTreeDiff(ctx context.Context, t Task) error {
	total, err := git.WorkingTreeNumstat(ctx, t.WorktreePath)
	if err != nil {
		return err
	}
	status, err := git.GetWorkingTreeStatus(ctx, t.WorktreePath)
	if err != nil {
		return err
	}
	t.Row.Lock()
	t.Row.WorkingTreeDiff = statusrow.LineDiff{Added: total.Added, Deleted: total.Deleted, Loaded: true}
	t.Row.WorkingTree = statusrow.WorkingTreeStatus{
		Untracked:  status.Untracked,
		Modified:   status.Modified,
		Staged:     status.Staged,
		Renamed:    status.Renamed,
		Deleted:    status.Deleted,
		Conflicted: status.Conflicted,
		Loaded:     true,
	}
	t.Row.Unlock()
	return nil
}

func execMergeTreeConflicts(ctx context.Context, t Task) error {
	conflicts, err := git.MergeTreeConflicts(ctx, t.WorktreePath, t.Target, t.Branch)
	if err != nil {
		return err
	}
	t.Row.Lock()
	t.Row.HasMergeConflicts = conflicts
	t.Row.MergeConflictsDone = true
	t.Row.Unlock()
	return nil
}

func execWorkingTreeConflicts(ctx context.Context, t Task) error {
	tree, err := git.StashCreateTree(ctx, t.WorktreePath)
	if err != nil {
		return err
	}
	if tree == "" {
		t.Row.Lock()
		t.Row.WorkingConflicts = statusrow.WorkingTreeConflictsClean
		t.Row.Unlock()
		return nil
	}
	conflicts, err := git.MergeTreeConflicts(ctx, t.WorktreePath, t.Target, tree)
	if err != nil {
		return err
	}
	t.Row.Lock()
	if conflicts {
		t.Row.WorkingConflicts = statusrow.WorkingTreeConflictsDirtyConflict
	} else {
		t.Row.WorkingConflicts = statusrow.WorkingTreeConflictsDirtyClean
	}
	t.Row.Unlock()
	return nil
}

func execGitOperation(ctx context.Context, t Task) error {
	gitDir, err := git.GitDir(ctx, t.WorktreePath)
	if err != nil {
		return err
	}
	op := git.DetectGitOperation(gitDir)
	t.Row.Lock()
	switch op {
	case git.GitOperationRebase:
		t.Row.GitOp = statusrow.GitOperationRebase
	case git.GitOperationMerge:
		t.Row.GitOp = statusrow.GitOperationMerge
	default:
		t.Row.GitOp = statusrow.GitOperationNone
	}
	t.Row.Unlock()
	return nil
}

func execUserMarker(ctx context.Context, t Task) error {
	marker, err := git.BranchConfigValue(ctx, t.RepoPath, t.Branch, "marker")
	if err != nil {
		return err
	}
	t.Row.Lock()
	t.Row.UserMarker = marker
	t.Row.UserMarkerLoaded = true
	t.Row.Unlock()
	return nil
}

func execUpstream(ctx context.Context, t Task) error {
	remote, ref, err := git.UpstreamRef(ctx, t.RepoPath, t.Branch)
	if err != nil {
		return err
	}
	if ref == "" {
		t.Row.Lock()
		t.Row.Upstream = statusrow.Upstream{Loaded: true}
		t.Row.Unlock()
		return nil
	}
	ahead, behind, err := git.AheadBehind(ctx, t.WorktreePath, t.Branch, ref)
	if err != nil {
		return err
	}
	t.Row.Lock()
	t.Row.Upstream = statusrow.Upstream{RemoteName: remote, Ahead: ahead, Behind: behind, Active: true, Loaded: true}
	t.Row.Unlock()
	return nil
}

func execCiStatus(ctx context.Context, t Task) error {
	if t.Forge == nil {
		t.Row.Lock()
		t.Row.PR = statusrow.PRStatus{Loaded: true, State: statusrow.CINone, Source: statusrow.SourceBranch}
		t.Row.Unlock()
		return nil
	}
	status, err := t.Forge.CIStatusForBranch(ctx, t.RepoURL, t.Branch)
	if err != nil {
		return err
	}
	t.Row.Lock()
	t.Row.PR = statusrow.PRStatus{
		Loaded: true,
		State:  statusrow.CIState(status.State),
		URL:    status.URL,
		Stale:  status.Stale,
		Source: statusrow.CISource(status.Source),
	}
	t.Row.Unlock()
	return nil
}

func execUrlStatus(ctx context.Context, t Task) error {
	if t.URLTemplate == "" {
		return nil
	}
	t.Row.Lock()
	t.Row.URL = t.URLTemplate
	t.Row.Unlock()

	active := probePortActive(ctx, t.URLTemplate)
	t.Row.Lock()
	t.Row.URLActive = active
	t.Row.URLActiveLoaded = true
	t.Row.Unlock()
	return nil
}

// probePortActive does a TCP dial against the host:port embedded in a URL,
// treating any connection failure as inactive rather than an error — an
// unreachable dev server is a normal, expected outcome, not a probe fault.
func probePortActive(ctx context.Context, rawURL string) bool {
	host := hostPortFromURL(rawURL)
	if host == "" {
		return false
	}
	d := net.Dialer{Timeout: 2 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func boolToTri(b bool) statusrow.TriState {
	if b {
		return statusrow.Positive
	}
	return statusrow.Negative
}
