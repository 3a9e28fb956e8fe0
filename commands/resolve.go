package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/activecm/connlog/pkg/logstore"
	"github.com/activecm/connlog/pkg/resolver"
	"github.com/activecm/connlog/resources"
	"github.com/urfave/cli"
	"github.com/vbauerster/mpb"
	"github.com/vbauerster/mpb/decor"
)

func init() {
	command := cli.Command{
		Name:      "resolve",
		Usage:     "Resolve the addresses in scan logs to organization names",
		ArgsUsage: "[scan log...]",
		Flags: []cli.Flag{
			configFlag,
			cli.StringFlag{
				Name:  "out, o",
				Usage: "Write reports to `DIRECTORY` instead of the configured report directory",
				Value: "",
			},
		},
		Action: resolveLogs,
	}

	bootstrapCommands(command)
}

func resolveLogs(c *cli.Context) error {
	res, err := resources.InitResources(getConfigFilePath(c))
	if err != nil {
		return cli.NewExitError(err, -1)
	}
	conf := res.Config

	reportDir := c.String("out")
	if reportDir == "" {
		reportDir = conf.S.Storage.ReportDirectory
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	lookup := resolver.NewHTTPLookup(conf.S.Resolver.APIURL, conf.R.Resolver.Timeout)
	r := resolver.New(lookup, res.Log)

	// progress bar per scan log
	p := mpb.New(mpb.WithWidth(20))
	var bar *mpb.Bar
	last := time.Now()
	r.OnFile = func(path string, entries int) {
		bar = p.AddBar(int64(entries),
			mpb.PrependDecorators(
				decor.Name("\t[-] "+path+":", decor.WC{W: 30, C: decor.DidentRight}),
				decor.CountersNoUnit(" %d / %d ", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(decor.Percentage()),
		)
		if entries == 0 {
			bar.SetTotal(0, true)
		}
		last = time.Now()
	}
	r.OnResolved = func() {
		bar.IncrBy(1, time.Since(last))
		last = time.Now()
	}

	var reports []string
	var failed error
	if files := c.Args(); len(files) > 0 {
		for _, in := range files {
			out := resolver.ReportPath(in, reportDir)
			if _, failed = r.ResolveFile(ctx, in, out); failed != nil {
				break
			}
			reports = append(reports, out)
		}
	} else {
		namer := logstore.NewNamer(conf, nil)
		reports, failed = r.ResolveDir(ctx, namer.Dir(), reportDir, namer.IsLogFile)
	}
	if bar != nil && failed != nil {
		// complete the bar where it stopped so Wait returns
		bar.SetTotal(bar.Current(), true)
	}
	p.Wait()

	if failed != nil {
		res.Log.Error(failed)
		return cli.NewExitError(failed, -1)
	}

	if len(reports) == 0 {
		return cli.NewExitError("No scan logs were found in "+conf.S.Storage.Directory, -1)
	}
	fmt.Fprintf(os.Stdout, "\t[+] Wrote %d report(s) to %s\n", len(reports), reportDir)
	return nil
}
