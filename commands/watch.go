package commands

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/activecm/connlog/pkg/endpoint"
	"github.com/activecm/connlog/pkg/logstore"
	"github.com/activecm/connlog/pkg/resolver"
	"github.com/activecm/connlog/pkg/scan"
	"github.com/activecm/connlog/resources"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

// demoEndpoints is replayed by watch --demo in place of the netstat output
var demoEndpoints = [][]string{
	{"93.184.216.34:443", "10.0.0.7:22", "140.82.112.3:443"},
	{"93.184.216.34:443", "140.82.112.3:443"},
	{"93.184.216.34:443", "151.101.1.69:443", "127.0.0.1:631"},
}

func init() {
	command := cli.Command{
		Name:  "watch",
		Usage: "Periodically log newly observed outbound connections",
		Flags: []cli.Flag{
			configFlag,
			cli.BoolFlag{
				Name:  "demo",
				Usage: "Replay a fixed set of endpoints instead of running the scan command",
			},
			cli.StringFlag{
				Name:  "file, f",
				Usage: "Append to `FILE` instead of a newly named scan log",
				Value: "",
			},
		},
		Action: watch,
	}

	bootstrapCommands(command)
}

func watch(c *cli.Context) error {
	res, err := resources.InitResources(getConfigFilePath(c))
	if err != nil {
		return cli.NewExitError(err, -1)
	}
	conf := res.Config

	path := c.String("file")
	if path == "" {
		namer := logstore.NewNamer(conf, rand.New(rand.NewSource(time.Now().UnixNano())))
		path = namer.Next()
	}
	store := logstore.NewFile(path, conf.S.Scan.ResolveNames)

	var source endpoint.Lister
	if c.Bool("demo") {
		source = endpoint.NewFixed(demoEndpoints...)
	} else {
		source = endpoint.NewNetstat(conf.S.Scan.Command, conf.S.Scan.HeaderLines)
	}

	var namer scan.Namer
	if conf.S.Scan.ResolveNames {
		namer = resolver.NewReverseLookup()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res.Log.WithFields(log.Fields{
		"file":      store.Path(),
		"interval":  conf.R.Scan.Interval,
		"window":    conf.R.Scan.Window,
		"retention": conf.R.Scan.Retention.String(),
	}).Info("Watching outbound connections")
	fmt.Fprintf(os.Stdout, "\t[+] Logging new connections to %s\n", store.Path())

	engine := scan.NewEngine(res, source, store, namer)
	err = scan.NewDriver(engine, conf.R.Scan.Interval, res.Log).Run(ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		res.Log.Info("Stopped watching")
		return nil
	}

	return cli.NewExitError(err, -1)
}
