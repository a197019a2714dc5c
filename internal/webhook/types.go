package webhook

import "encoding/json"

// Delivery is one webhook payload plus its routing headers.
type Delivery struct {
	ID    string
	Event string
	Body  []byte
}

type User struct {
	Login string `json:"login"`
}

type Repository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	URL      string `json:"url"`
	HTMLURL  string `json:"html_url"`
	Owner    User   `json:"owner"`
}

type Ref struct {
	Ref  string     `json:"ref"`
	SHA  string     `json:"sha"`
	User User       `json:"user"`
	Repo Repository `json:"repo"`
}

type PullRequest struct {
	ID                 int64  `json:"id"`
	Number             int    `json:"number"`
	Title              string `json:"title"`
	Body               string `json:"body"`
	URL                string `json:"url"`
	HTMLURL            string `json:"html_url"`
	IssueURL           string `json:"issue_url"`
	Merged             bool   `json:"merged"`
	MergeCommitSHA     string `json:"merge_commit_sha"`
	User               User   `json:"user"`
	Head               Ref    `json:"head"`
	Base               Ref    `json:"base"`
	RequestedReviewers []User `json:"requested_reviewers"`
}

type Issue struct {
	ID      int64  `json:"id"`
	Number  int    `json:"number"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	HTMLURL string `json:"html_url"`
	User    User   `json:"user"`
}

type Review struct {
	State string `json:"state"`
	User  User   `json:"user"`
}

type Installation struct {
	ID int64 `json:"id"`
}

type Hook struct {
	AppID int64 `json:"app_id"`
}

type AdvisoryPackage struct {
	Ecosystem string `json:"ecosystem"`
	Name      string `json:"name"`
}

type AdvisoryVulnerability struct {
	Package AdvisoryPackage `json:"package"`
}

type AdvisoryReference struct {
	URL string `json:"url"`
}

type SecurityAdvisory struct {
	GHSAID          string                  `json:"ghsa_id"`
	Summary         string                  `json:"summary"`
	Description     string                  `json:"description"`
	Vulnerabilities []AdvisoryVulnerability `json:"vulnerabilities"`
	References      []AdvisoryReference     `json:"references"`
}

// Payload is the union of fields this bot reads across event types.
// GitHub sends much more; everything unused stays unparsed.
type Payload struct {
	Action            string            `json:"action"`
	Zen               string            `json:"zen"`
	HookID            int64             `json:"hook_id"`
	Hook              *Hook             `json:"hook"`
	Number            int               `json:"number"`
	PullRequest       *PullRequest      `json:"pull_request"`
	Issue             *Issue            `json:"issue"`
	Review            *Review           `json:"review"`
	RequestedReviewer *User             `json:"requested_reviewer"`
	Repository        *Repository       `json:"repository"`
	Sender            *User             `json:"sender"`
	Installation      *Installation     `json:"installation"`
	SecurityAdvisory  *SecurityAdvisory `json:"security_advisory"`
}

func ParsePayload(body []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Payload{}, err
	}
	return p, nil
}
