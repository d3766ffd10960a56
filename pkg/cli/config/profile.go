package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/checkin/pkg/domain/types"
	"github.com/secmon-lab/checkin/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Profile points at a TOML file that seeds settings on first run
type Profile struct {
	path string
}

type profileFile struct {
	AttendanceEmail string   `toml:"attendance_email"`
	SlackChannelID  string   `toml:"slack_channel_id"`
	DefaultLocation string   `toml:"default_location"`
	SavedReasons    []string `toml:"saved_reasons"`
}

func (x *Profile) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "profile",
			Usage:       "TOML file seeding settings when none are stored",
			Sources:     cli.EnvVars("CHECKIN_PROFILE"),
			TakesFile:   true,
			Destination: &x.path,
		},
	}
}

// Load reads the profile, or returns nil when no path is set
func (x *Profile) Load() (*usecase.Profile, error) {
	if x.path == "" {
		return nil, nil
	}
	return LoadProfile(x.path)
}

// LoadProfile parses a profile file
func LoadProfile(path string) (*usecase.Profile, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read profile", goerr.V("path", path))
	}

	var f profileFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML profile", goerr.V("path", path))
	}

	profile := &usecase.Profile{
		AttendanceEmail: f.AttendanceEmail,
		SlackChannelID:  f.SlackChannelID,
		SavedReasons:    f.SavedReasons,
	}
	if f.DefaultLocation != "" {
		loc, err := types.ParseLocation(f.DefaultLocation)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid default_location", goerr.V("path", path))
		}
		profile.DefaultLocation = loc
	}
	return profile, nil
}
