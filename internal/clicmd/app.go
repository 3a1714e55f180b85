package clicmd

import "github.com/spotifreak/spotifreak/cli"

// appVersion is reported by --version and threaded through every command's
// cli.NewCommand call, matching how the teacher's own CLIs version each
// subcommand independently rather than only the root.
const appVersion = "0.1.0"

// New assembles the full spotifreak command tree: init/doctor/serve for
// lifecycle management, and list/run/status/start/pause/resume/delete/
// logs/state for day-to-day job control (SPEC_FULL.md §4.11).
func New() *cli.CLI {
	app := cli.NewCLI()
	app.AddVersion(appVersion)

	app.AddCommand(newInitCommand())
	app.AddCommand(newDoctorCommand())
	app.AddCommand(newServeCommand())

	app.AddCommand(newListCommand())
	app.AddCommand(newRunCommand())
	app.AddCommand(newStatusCommand())
	app.AddCommand(newJobCommandCommand("start", "Start (or immediately fire) a job", "start"))
	app.AddCommand(newJobCommandCommand("pause", "Pause a job's schedule", "pause"))
	app.AddCommand(newJobCommandCommand("resume", "Resume a paused job", "resume"))
	app.AddCommand(newJobCommandCommand("delete", "Remove a job from the running supervisor", "delete"))
	app.AddCommand(newLogsCommand())
	app.AddCommand(newStateCommand())

	return app
}
