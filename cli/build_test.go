package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rigrun/rigrun/config"
	"github.com/rigrun/rigrun/model"
)

func testApp() *App {
	return &App{logger: zerolog.Nop()}
}

func TestBuildArtifact(t *testing.T) {
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Build.Command = []string{"sh", "-c", "echo compiling {test} for {profile}; touch " + filepath.Join(dir, "{test}-{profile}")}
	cfg.Build.Artifact = filepath.Join(dir, "{test}-{profile}")

	profile := model.Profile{Name: "debug", Timeout: 10 * time.Second}
	artifact, out, err := testApp().buildArtifact(cfg, "gpio-flex", profile)

	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "gpio-flex-debug"), artifact)
	require.Contains(t, out, "compiling gpio-flex for debug")
	require.FileExists(t, artifact)
}

func TestBuildArtifact_ToolFailureSurfacedVerbatim(t *testing.T) {
	cfg := config.Default()
	cfg.Build.Command = []string{"sh", "-c", "echo 'error[E0425]: cannot find value' >&2; exit 101"}

	profile := model.Profile{Name: "debug", Timeout: 10 * time.Second}
	_, out, err := testApp().buildArtifact(cfg, "gpio-flex", profile)

	require.Error(t, err)
	require.Contains(t, out, "error[E0425]")
}

func TestBuildArtifact_Timeout(t *testing.T) {
	cfg := config.Default()
	cfg.Build.Command = []string{"sh", "-c", "sleep 30"}

	profile := model.Profile{Name: "debug", Timeout: 200 * time.Millisecond}
	start := time.Now()
	_, _, err := testApp().buildArtifact(cfg, "gpio-flex", profile)

	require.Error(t, err)
	require.Contains(t, err.Error(), "timed out")
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestBuildArtifact_MissingArtifact(t *testing.T) {
	cfg := config.Default()
	cfg.Build.Command = []string{"true"}
	cfg.Build.Artifact = filepath.Join(t.TempDir(), "never-created")

	profile := model.Profile{Name: "debug", Timeout: 10 * time.Second}
	_, _, err := testApp().buildArtifact(cfg, "gpio-flex", profile)

	require.Error(t, err)
	require.Contains(t, err.Error(), "artifact not found")
}
