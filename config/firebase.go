package config

// FirebaseConfig selects the service account used to push refresh hints to devices.
// An empty CredentialsFile disables FCM and push hints are only logged.
type FirebaseConfig struct {
	CredentialsFile string `toml:"credentials_file"`
	ProjectID       string `toml:"project_id"`
}

func (c *FirebaseConfig) loadEnv() {
	setString(&c.CredentialsFile, "FIREBASE_CREDENTIALS_FILE")
	setString(&c.ProjectID, "FIREBASE_PROJECT_ID")
}

// Enabled reports whether FCM delivery is configured
func (c *FirebaseConfig) Enabled() bool {
	return c.CredentialsFile != ""
}
