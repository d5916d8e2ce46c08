package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"instastudio/internal/api"
)

func printQueueRetryResult(cmd *cobra.Command, result api.RetryItemsResult) {
	out := cmd.OutOrStdout()
	for _, item := range result.Items {
		switch item.Outcome {
		case api.RetryItemUpdated:
			fmt.Fprintf(out, "Item %d reset for retry\n", item.ID)
		case api.RetryItemNotFound:
			fmt.Fprintf(out, "Item %d not found\n", item.ID)
		case api.RetryItemNotRetryable:
			fmt.Fprintf(out, "Item %d is not in a retryable state\n", item.ID)
		}
	}
	fmt.Fprintf(out, "Retried %d items\n", result.UpdatedCount)
}

func printQueueRemoveResult(cmd *cobra.Command, result api.RemoveItemsResult) {
	out := cmd.OutOrStdout()
	for _, item := range result.Items {
		switch item.Outcome {
		case api.RemoveItemRemoved:
			fmt.Fprintf(out, "Item %d removed\n", item.ID)
		case api.RemoveItemNotFound:
			fmt.Fprintf(out, "Item %d not found\n", item.ID)
		}
	}
	fmt.Fprintf(out, "Removed %d items\n", result.RemovedCount)
}
