package model

import "time"

// SessionRecord is the durable record of one rigrun session, written as
// session.json into the history directory.
type SessionRecord struct {
	// Unique ID for this session (16 random bytes, hex encoded)
	ID string `json:"id"`
	// Timestamp when the session started
	Timestamp time.Time `json:"timestamp"`
	// Command-line arguments (including command name)
	Args []string `json:"args"`
	// Working directory where the session ran (relative to repo root)
	WorkDir string `json:"workdir"`
	// Exit code of the session
	ExitCode int `json:"exit_code"`
	// Duration of the whole session
	Duration time.Duration `json:"duration"`
	// Git commit hash at time of execution
	Commit string `json:"commit,omitempty"`
	// Git branch at time of execution
	Branch string `json:"branch,omitempty"`
	// Repository name
	Repo string `json:"repo,omitempty"`
	// Per-(test, profile) results, in discovery order (local sessions)
	Results []RunResult `json:"results,omitempty"`
	// Remote session details, when the run was proxied to a rig
	Remote *RemoteRun `json:"remote,omitempty"`
	// Artifacts generated during this session
	Artifacts []Artifact `json:"artifacts,omitempty"`
}

// RemoteRun describes a session that was proxied to a remote rig controller.
type RemoteRun struct {
	// Rig target the session was proxied to (e.g. "user@rig-host")
	Rig string `json:"rig"`
	// Session-level outcome mapped from the remote output banner
	Outcome Outcome `json:"outcome"`
}

// ArtifactType identifies the type of artifact
type ArtifactType uint8

const (
	ArtifactTypeOutput ArtifactType = iota
	ArtifactTypeRemoteOutput
)

// Artifact represents a file generated during a session
type Artifact struct {
	Type ArtifactType `json:"type"`
	Size uint64       `json:"size"`
	File string       `json:"file"` // relative to session dir
}
