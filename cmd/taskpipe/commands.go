package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/born-ml/taskpipe/internal/pipeline"
	"github.com/born-ml/taskpipe/internal/tasks"
	"github.com/born-ml/taskpipe/pipelines"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

const version = "v0.1.0-dev"

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stdout)
		return 2
	}

	var err error
	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "taskpipe %s\n", version)
	case "tasks":
		err = listTasks(stdout)
	case "select":
		err = selectKind(stdout, args[1:])
	case "inspect":
		err = inspect(stdout, stderr, args[1:])
	case "cache":
		err = listCache(stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}
	if err != nil {
		fmt.Fprintln(stderr, color.Red.Render("error: ")+err.Error())
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "taskpipe - accelerator-backed inference pipelines")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tasks                    List registered tasks")
	fmt.Fprintln(w, "  select <task> <family>   Show the pipeline kind for a task and library family")
	fmt.Fprintln(w, "  inspect [flags] <model>  Describe a model snapshot")
	fmt.Fprintln(w, "  cache                    List cached snapshots")
	fmt.Fprintln(w, "  version                  Show version")
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func listTasks(w io.Writer) error {
	table := newTable(w, "Task", "Implementation", "Classes", "Default model", "Modality", "Specialized for")
	for _, d := range tasks.All() {
		classes := lo.Map(d.Classes, func(c tasks.ModelClass, _ int) string { return c.Name })
		families := lo.FilterMap(pipeline.Specializations(), func(s pipeline.Specialization, _ int) (string, bool) {
			return string(s.Family), s.Task == d.ID
		})
		table.Append([]string{
			string(d.ID),
			d.Implementation,
			strings.Join(classes, ", "),
			lo.Ternary(d.DefaultModel == "", "-", d.DefaultModel),
			d.Modality.String(),
			lo.Ternary(len(families) == 0, "-", strings.Join(families, ", ")),
		})
	}
	table.Render()
	return nil
}

func kindLabel(k pipelines.Kind) string {
	if k == pipelines.KindSpecialized {
		return color.Green.Render(k.String())
	}
	return color.Yellow.Render(k.String())
}

func selectKind(w io.Writer, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: select <task> <family>")
	}
	task := tasks.ID(args[0])
	if _, err := tasks.Lookup(task); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s / %s: %s\n", task, args[1], kindLabel(pipelines.Select(task, args[1])))
	return nil
}

func openEnv(stderr io.Writer) (*pipelines.Environment, pipelines.Settings, error) {
	settings, err := pipelines.LoadSettings(".env")
	if err != nil {
		return nil, settings, err
	}
	env, err := pipelines.Open(settings, nil, settings.Logger(stderr), nil)
	return env, settings, err
}

func inspect(w, stderr io.Writer, args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	revision := fs.String("revision", "", "Model revision (default main)")
	token := fs.String("token", "", "Hub token (default $HF_TOKEN)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: inspect [flags] <model>")
	}

	env, settings, err := openEnv(stderr)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tok := lo.Ternary(*token == "", settings.HubToken, *token)
	d, err := env.Describe(ctx, fs.Arg(0), tok, *revision)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s %s\n", color.Bold.Render("Model:"), d.Snapshot.ID)
	fmt.Fprintf(w, "%s %s\n", color.Bold.Render("Snapshot:"), d.Snapshot.Dir)
	fmt.Fprintf(w, "%s %s\n", color.Bold.Render("Family:"), d.Family)
	fmt.Fprintf(w, "%s %s %s (opset %d, %d nodes)\n\n", color.Bold.Render("Graph:"),
		d.Info.ProducerName, d.Info.ProducerVersion, d.Info.Opset(), d.Info.NumNodes)

	ports := newTable(w, "Direction", "Name", "Type", "Shape")
	for _, in := range d.Info.Inputs {
		ports.Append([]string{"input", in.Name, in.ElemType.String(), in.Shape()})
	}
	for _, out := range d.Info.Outputs {
		ports.Append([]string{"output", out.Name, out.ElemType.String(), out.Shape()})
	}
	ports.Render()
	fmt.Fprintln(w)

	names := lo.Map(d.Preprocessors, func(p pipelines.Preprocessor, _ int) string { return p.Name() })
	fmt.Fprintf(w, "%s %s\n\n", color.Bold.Render("Preprocessors:"), lo.Ternary(len(names) == 0, "none", strings.Join(names, ", ")))

	kinds := newTable(w, "Task", "Pipeline")
	for _, t := range tasks.All() {
		kinds.Append([]string{string(t.ID), kindLabel(pipelines.Select(t.ID, string(d.Family)))})
	}
	kinds.Render()
	return nil
}

func listCache(w, stderr io.Writer) error {
	env, _, err := openEnv(stderr)
	if err != nil {
		return err
	}
	defer env.Close()

	snaps, err := env.Snapshots()
	if err != nil {
		return err
	}
	table := newTable(w, "Model", "Revision", "Files", "Fetched", "Directory")
	for _, s := range snaps {
		table.Append([]string{
			s.ID,
			s.Revision,
			strconv.Itoa(len(s.Files)),
			s.FetchedAt.Format("2006-01-02 15:04"),
			s.Dir,
		})
	}
	table.Render()
	return nil
}
