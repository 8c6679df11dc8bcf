package commands

import (
	"fmt"

	"github.com/adamf123git/cvs-archive-loader/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the visit dashboard",
	Long: `Start the cvsloader web dashboard for launching and watching visits
through a browser.

The dashboard provides:
- A list of visits started through it
- A form for starting a new visit
- Live progress for a running visit over WebSocket

By default the server listens on port 8080, customizable with --port.`,
	RunE: runServe,
}

var (
	servePort       int
	serveConfigPath string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Visit configuration file path, stored in the server config (the dashboard does not load it)")
}

func runServe(cmd *cobra.Command, args []string) error {
	config := web.ServerConfig{
		Port:       servePort,
		ConfigPath: serveConfigPath,
	}

	server := web.NewServer(config)

	fmt.Printf("Starting cvsloader dashboard...\n")
	fmt.Printf("Open http://localhost:%d in your browser\n\n", servePort)

	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start web server: %w", err)
	}

	return nil
}
