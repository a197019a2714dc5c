package actions

import "strings"

// Title prefixes produced by automated SrcOps tooling. Humans never get
// notified about these.
const (
	titleAutomaticUpdate = "Automatic update of"
	titleRelease         = "Release of"
	titleReleaseVersion  = "Release of version"
	titleRelock          = "Automatic dependency re-locking"
	titleInitialLock     = "Initial dependency lock"
	titleFailedUpdate    = "Failed to update dependencies"
	titleWorkshopIssue   = "Workshop issue"
)

var ignoredClosedPRTitles = []string{titleAutomaticUpdate, titleRelease, titleRelock}

var ignoredIssueTitles = []string{titleAutomaticUpdate, titleRelock, titleInitialLock, titleFailedUpdate}

func hasAnyPrefix(title string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(title, prefix) {
			return true
		}
	}
	return false
}

// isStageVersionBump matches "Bump version of <x> ... stage" titles.
func isStageVersionBump(title string) bool {
	lower := strings.ToLower(title)
	return strings.HasPrefix(lower, "bump version of") && strings.HasSuffix(lower, "stage")
}
