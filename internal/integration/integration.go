// Package integration decides whether a branch's content is already
// present in its effective integration target, using the short-circuit
// signal chain documented in spec.md §4.3.
package integration

import (
	"context"

	"github.com/wtstatus/wtstatus/internal/git"
	"github.com/wtstatus/wtstatus/internal/statusrow"
)

// EffectiveTarget resolves the ref actually used for integration checks.
// If localTarget has an upstream and localTarget is a strict ancestor of
// it, the upstream is used (catches "merged remotely but not pulled yet").
// Otherwise localTarget is used.
func EffectiveTarget(ctx context.Context, repoPath, localTarget string) (string, error) {
	remote, ref, err := git.UpstreamRef(ctx, repoPath, localTarget)
	if err != nil {
		return "", err
	}
	if remote == "" || ref == "" {
		return localTarget, nil
	}

	localSHA, err := git.ResolveRef(ctx, repoPath, localTarget)
	if err != nil {
		return localTarget, nil
	}
	upstreamSHA, err := git.ResolveRef(ctx, repoPath, ref)
	if err != nil {
		return localTarget, nil
	}
	if localSHA == upstreamSHA {
		// same commit, no divergence to resolve either way
		return localTarget, nil
	}

	isAncestor, err := git.IsAncestor(ctx, repoPath, localTarget, ref)
	if err != nil || !isAncestor {
		return localTarget, nil
	}
	// localTarget is a strict ancestor of its upstream: prefer upstream
	return ref, nil
}

// Result is the outcome of evaluating the five signals for one row.
type Result struct {
	Integrated bool
	Reason     statusrow.IntegrationReason
	Orphan     bool
}

// Evaluate applies the priority-ordered short-circuit chain
// (SameCommit > Ancestor > NoAddedChanges > TreesMatch > MergeAddsNothing)
// to a row's already-populated IntegrationSignals. Unknown (NotLoaded)
// signals are treated as "no evidence yet", never as negative — callers
// should re-evaluate once more signals load.
func Evaluate(s statusrow.IntegrationSignals, counts statusrow.Counts) Result {
	if counts.Loaded && counts.IsOrphan {
		return Result{Orphan: true}
	}

	switch {
	case s.SameCommit == statusrow.Positive:
		return Result{Integrated: true, Reason: statusrow.ReasonSameCommit}
	case s.IsAncestor == statusrow.Positive:
		return Result{Integrated: true, Reason: statusrow.ReasonAncestor}
	case s.HasAddedChanges == statusrow.Positive:
		return Result{Integrated: true, Reason: statusrow.ReasonNoAddedChanges}
	case s.TreesMatch == statusrow.Positive:
		return Result{Integrated: true, Reason: statusrow.ReasonTreesMatch}
	case s.WouldMergeAdd == statusrow.Negative && anySignalLoaded(s):
		return Result{Integrated: true, Reason: statusrow.ReasonMergeAddsNothing}
	}
	return Result{}
}

func anySignalLoaded(s statusrow.IntegrationSignals) bool {
	return s.SameCommit != statusrow.NotLoaded || s.IsAncestor != statusrow.NotLoaded ||
		s.HasAddedChanges != statusrow.NotLoaded || s.TreesMatch != statusrow.NotLoaded ||
		s.WouldMergeAdd != statusrow.NotLoaded
}

// SameCommit sets the SameCommit signal by comparing head SHAs directly
// (cheapest possible check, so it never needs a subprocess).
func SameCommit(headSHA, targetSHA string) statusrow.TriState {
	if headSHA == "" || targetSHA == "" {
		return statusrow.NotLoaded
	}
	if headSHA == targetSHA {
		return statusrow.Positive
	}
	return statusrow.Negative
}
