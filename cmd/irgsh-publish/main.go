package main

import (
	"log"
	"os"

	"github.com/urfave/cli"
)

var (
	app        *cli.App
	version    string
	configPath string
)

func inputEnv(name string) string {
	return "INPUT_" + name + ", INPUT_" + underscored(name)
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	app = cli.NewApp()
	app.Name = "irgsh-publish"
	app.Usage = "publish plugin builds to the BlankOn marketplace"
	app.Author = "BlankOn Developer"
	app.Email = "blankon-dev@googlegroups.com"
	app.Version = version

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:        "config, c",
			Usage:       "Path to config file (optional, defaults to $IRGSH_PUBLISH_CONFIG_PATH)",
			Destination: &configPath,
		},
		cli.StringFlag{
			Name:   "api-key",
			Usage:  "Marketplace API key",
			EnvVar: inputEnv("API-KEY"),
		},
		cli.StringFlag{
			Name:   "api-url",
			Usage:  "Marketplace API base URL",
			EnvVar: inputEnv("API-URL"),
		},
		cli.StringFlag{
			Name:   "publisher-slug",
			Usage:  "Publisher slug",
			EnvVar: inputEnv("PUBLISHER-SLUG"),
		},
		cli.StringFlag{
			Name:   "plugin-id",
			Usage:  "Plugin identifier",
			EnvVar: inputEnv("PLUGIN-ID"),
		},
		cli.StringFlag{
			Name:   "version",
			Usage:  "Plugin version, a leading v is stripped",
			EnvVar: inputEnv("VERSION"),
		},
		cli.StringFlag{
			Name:   "artifact-path",
			Usage:  "Directory holding <plugin-id>-<arch>.tar.gz files",
			EnvVar: inputEnv("ARTIFACT-PATH"),
		},
		cli.StringFlag{
			Name:   "architectures",
			Usage:  "Comma separated target architectures",
			EnvVar: inputEnv("ARCHITECTURES"),
		},
		cli.StringFlag{
			Name:   "wait-for-approval",
			Usage:  "Poll until the submission is approved, rejected or withdrawn (true/false)",
			EnvVar: inputEnv("WAIT-FOR-APPROVAL"),
		},
		cli.StringFlag{
			Name:   "poll-timeout",
			Usage:  "Approval polling timeout in seconds (default 600)",
			EnvVar: inputEnv("POLL-TIMEOUT"),
		},
		cli.StringFlag{
			Name:   "notify-webhook",
			Usage:  "Webhook notified with the run result",
			EnvVar: inputEnv("NOTIFY-WEBHOOK"),
		},
		cli.IntFlag{
			Name:   "max-parallel",
			Usage:  "Maximum concurrent uploads, 0 for unbounded",
			EnvVar: inputEnv("MAX-PARALLEL"),
		},
		cli.StringFlag{
			Name:   "log-level",
			Usage:  "Log level (DEBUG, INFO, WARNING, ERROR)",
			EnvVar: inputEnv("LOG-LEVEL"),
		},
	}

	app.Commands = []cli.Command{
		{
			Name:      "status",
			Usage:     "Show the current status of a submission",
			ArgsUsage: "<submission-id>",
			Action:    statusAction,
		},
	}

	app.Action = publishAction

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
