package model

// Keys under which user preferences persist across restarts.
const (
	SettingGitRepoURL  = "git_repo_url"
	SettingGitBranch   = "git_branch"
	SettingRepository  = "repository"
	SettingTag         = "tag"
	SettingRegistryURL = "registry_url"
)
