package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hanpama/graphplan/internal/execution"
	"github.com/hanpama/graphplan/internal/executor"
)

func newExecuteCmd(a *app) *cobra.Command {
	var queryPath, operation, dataPath, variables string
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Execute an operation against a JSON document",
		Long: `Execute runs an operation with the JSON document as root value. Fields
resolve to the object member of the same name; objects returned for
interfaces and unions name their type in a "__typename" member.`,
		Example: "graphplan execute -s schema.graphql -q query.graphql -d data.json --variables '{\"id\":\"1\"}'",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query, err := readQuery(queryPath)
			if err != nil {
				return err
			}
			req := executor.Request{Query: query, OperationName: operation}
			if dataPath != "" {
				if req.Root, err = readJSON(dataPath); err != nil {
					return fmt.Errorf("data: %w", err)
				}
			}
			if variables != "" {
				if err := json.Unmarshal([]byte(variables), &req.Variables); err != nil {
					return fmt.Errorf("variables: %w", err)
				}
			}

			var opts executor.Options
			var registry *prometheus.Registry
			if a.cfg.Metrics.Enabled {
				metrics := execution.NewPrometheusMetrics()
				registry = prometheus.NewRegistry()
				metrics.MustRegister(registry)
				opts.Metrics = metrics
			}
			e, err := a.executor(cmd.Context(), opts)
			if err != nil {
				return err
			}

			res := e.Execute(cmd.Context(), req)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
			if registry != nil {
				if err := writeMetrics(cmd.ErrOrStderr(), registry); err != nil {
					return err
				}
			}
			if res.Data == nil && len(res.Errors) > 0 {
				return fmt.Errorf("%s: execution failed", queryPath)
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&queryPath, "query", "q", "", "query document file")
	flags.StringVarP(&operation, "operation", "o", "", "operation name")
	flags.StringVarP(&dataPath, "data", "d", "", "JSON file used as root value")
	flags.StringVar(&variables, "variables", "", "variable values as a JSON object")
	return cmd
}

func readJSON(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var v any
	if err := json.NewDecoder(f).Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// writeMetrics prints one line per collected series.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
			}
			sort.Strings(labels)
			series := mf.GetName() + "{" + strings.Join(labels, ",") + "}"
			switch {
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s count=%d sum=%g\n", series, h.GetSampleCount(), h.GetSampleSum())
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s %g\n", series, m.GetCounter().GetValue())
			}
		}
	}
	return nil
}
