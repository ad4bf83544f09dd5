package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Archith7/MediSaarthi/internal/core"
	"github.com/Archith7/MediSaarthi/internal/models"
	"github.com/Archith7/MediSaarthi/ui/components"
)

var abnormalLimit int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate lab statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := apiClient()
		if err != nil {
			return err
		}
		stats, err := core.NewBinder(client, cfg.GetRecentLimit()).Stats(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), stats, func(w io.Writer) {
			counters := stats.Counters()
			fmt.Fprintf(w, "Patients:    %d\n", counters[0])
			fmt.Fprintf(w, "Tests:       %d\n", counters[1])
			fmt.Fprintf(w, "Abnormal:    %d\n", counters[2])
			fmt.Fprintf(w, "Test types:  %d\n", counters[3])
		})
	},
}

var abnormalCmd = &cobra.Command{
	Use:   "abnormal",
	Short: "List the most recent abnormal results",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := apiClient()
		if err != nil {
			return err
		}
		limit := abnormalLimit
		if limit <= 0 {
			limit = cfg.GetRecentLimit()
		}
		rows, err := core.NewBinder(client, limit).RecentAbnormal(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), rows, func(w io.Writer) {
			if len(rows) == 0 {
				fmt.Fprintln(w, "No abnormal results recorded yet")
				return
			}
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t(ref %s)\n",
					models.OrNA(r.PatientName), models.OrNA(r.CanonicalTest), models.OrNA(r.AbnormalDirection),
					r.Value, r.Unit, models.Range(r.ReferenceMin, r.ReferenceMax))
			}
		})
	},
}

var patientsCmd = &cobra.Command{
	Use:   "patients",
	Short: "List patients",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, client, err := apiClient()
		if err != nil {
			return err
		}
		patients, err := core.NewBinder(client, cfg.GetRecentLimit()).Patients(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), patients, func(w io.Writer) {
			if len(patients) == 0 {
				fmt.Fprintln(w, "No patients yet")
				return
			}
			for _, p := range patients {
				flag := ""
				if p.HasAbnormal {
					flag = "\tabnormal"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s tests\tlatest %s%s\n",
					models.OrNA(p.Name), p.Age, models.OrNA(p.Gender), strconv.Itoa(p.TestCount), p.Latest(), flag)
			}
		})
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the analytics API is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := apiClient()
		if err != nil {
			return err
		}
		if !core.NewHealthMonitor(client, 0).ProbeOnce(cmd.Context()) {
			return fmt.Errorf("%s is unreachable", client.BaseURL())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is online\n", client.BaseURL())
		return nil
	},
}

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Ask a question about lab results in plain language",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := apiClient()
		if err != nil {
			return err
		}
		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			return errors.New("question is empty")
		}
		session := core.NewQuerySession(client)
		if err := session.Submit(cmd.Context(), question); err != nil {
			return err
		}

		transcript := session.Transcript()
		answer := transcript[len(transcript)-1]
		result := struct {
			Answer  string              `json:"answer" yaml:"answer"`
			Records []models.TestRecord `json:"records" yaml:"records"`
		}{answer.Text, answer.Records}

		return render(cmd.OutOrStdout(), result, func(w io.Writer) {
			fmt.Fprintln(w, answer.Text)
			if len(answer.Records) > 0 {
				fmt.Fprintln(w, components.RenderRecords(answer.Records, 100))
			}
		})
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload [paths...]",
	Short: "Upload lab report images one at a time",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := apiClient()
		if err != nil {
			return err
		}
		files, err := core.LoadFiles(args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		pipeline := core.NewUploadPipeline(client)
		if outputFormat == "text" || outputFormat == "" {
			reported := 0
			pipeline.OnChange(func(snap models.UploadSnapshot) {
				if snap.State != models.UploadUploading || len(snap.Outcomes) == reported {
					return
				}
				reported = len(snap.Outcomes)
				fmt.Fprintf(out, "[%3d%%] %d/%d\n", snap.Progress.Percent(), snap.Progress.Completed, snap.Progress.Total)
			})
		}

		kept, err := pipeline.SelectFiles(files)
		if err != nil {
			return err
		}
		if kept == 0 {
			return fmt.Errorf("no image files among %d selected", len(files))
		}

		outcomes, err := pipeline.Upload(cmd.Context())
		if err != nil {
			return err
		}
		if err := render(out, outcomes, func(w io.Writer) {
			fmt.Fprint(w, components.RenderOutcomes(outcomes))
		}); err != nil {
			return err
		}
		if failed := pipeline.Snapshot().Failed(); failed > 0 {
			return fmt.Errorf("%d of %d uploads failed", failed, len(outcomes))
		}
		return nil
	},
}

func init() {
	abnormalCmd.Flags().IntVarP(&abnormalLimit, "limit", "n", 0, "number of results (defaults to the profile's recent_limit)")

	for _, c := range []*cobra.Command{statsCmd, abnormalCmd, patientsCmd, askCmd, uploadCmd} {
		addOutputFlag(c)
	}
	for _, c := range []*cobra.Command{statsCmd, abnormalCmd, patientsCmd, askCmd, uploadCmd, healthCmd} {
		c.SilenceUsage = true
		rootCmd.AddCommand(c)
	}
}
