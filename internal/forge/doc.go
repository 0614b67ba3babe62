// Package forge is the read-only collaborator behind the CiStatus network
// probe (spec.md §4.1).
//
// # Forge Interface
//
// [Forge] resolves a branch's open PR/MR and its aggregated check/pipeline
// state into a [CIStatus]. It never mutates a PR, a branch, or the
// repository — cloning, merging, and PR creation belong to the mutating
// subcommands outside the core.
//
// # Platform Detection
//
// [Detect] determines the forge from a repository's origin URL
// (gitlab.com / gitlab.* domains, else GitHub). [ByName] looks one up
// explicitly.
//
// # Platform Differences
//
// GitHub reports check-run conclusions (SUCCESS/FAILURE/...) per commit;
// GitLab reports a single pipeline status per merge request. Both are
// normalized to the same five-state [CIState].
package forge
