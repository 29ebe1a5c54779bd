package main

import (
	"context"
	"fmt"
	"os"

	"github.com/RafaelEmery/payments-engine/internal/bootstrap"
)

func main() {
	ctx := context.Background()

	service, err := bootstrap.NewService(ctx, bootstrap.LoadConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start payments service: %v\n", err)
		os.Exit(1)
	}

	if err := service.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "payments service exited with error: %v\n", err)
		os.Exit(1)
	}
}
