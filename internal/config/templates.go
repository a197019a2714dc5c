package config

import (
	"fmt"
	"os"
)

func Template() string {
	return starterTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(starterTemplate), 0o600)
}

const starterTemplate = `[server]
addr = ":8080"
cors_origins = []

[github]
api_url = "https://api.github.com"
token = ""
webhook_secret = "change-me"
bot_logins = ["sesheta", "khebhut[bot]"]
auto_approve_orgs = []
workshop_assignees = []

[chat]
enabled = false
webhook_url = ""

[redis]
addr = ""

[dedup]
ttl_seconds = 10
max_entries = 100

[roster]
ignored_logins = ["sesheta"]

[[roster.users]]
login = "octocat"
chat_id = "100000000000000000000"
name = "Octo Cat"
`
