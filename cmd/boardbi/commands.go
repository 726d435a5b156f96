package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/boardbi/internal/agent"
)

var chatCmd = &cobra.Command{
	Use:   "chat <question>",
	Short: "Ask a business question over the boards",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		message := strings.Join(args, " ")
		resp, err := client.post("/chat", map[string]string{"message": message})
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		fmt.Println(result["response"])
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the leadership update report",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post("/report", nil)
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		fmt.Println(result["report"])
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force refresh of cached board data",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post("/refresh", nil)
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("%s", result["message"])
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server and board platform status",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get("/health")
		if err != nil {
			printStatus("Server", "stopped")
			return nil
		}

		var health agent.HealthStatus
		if err := decodeJSON(resp, &health); err != nil {
			return err
		}

		printStatus("Server", "%s", health.Status)
		printStatus("Monday.com", "%s (%d boards visible)", health.Monday.Status, health.Monday.BoardsFound)
		if health.GeminiConfigured {
			printStatus("Gemini", "configured")
		} else {
			printStatus("Gemini", "not configured")
		}
		printStatus("Work orders board", "%s", health.WorkOrdersBoard)
		printStatus("Deals board", "%s", health.DealsBoard)
		return nil
	},
}
