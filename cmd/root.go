package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/Archith7/MediSaarthi/internal/app"
	"github.com/Archith7/MediSaarthi/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "medisaarthi",
	Short: "Terminal client for the MediSaarthi lab report analytics API",
	Long: `MediSaarthi browses lab report analytics from the terminal: a dashboard,
recent abnormal results, natural language questions, report uploads and
the patient directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		runApplication(cfg)
	},
}

func runApplication(cfg *config.Config) {
	application, err := app.NewApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	defer application.Stop()

	if err := application.Start(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution error: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
