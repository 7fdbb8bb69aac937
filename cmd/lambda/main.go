package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/berniyo/payson-lambda/internal/app"
	"github.com/berniyo/payson-lambda/internal/config"
	"github.com/berniyo/payson-lambda/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.New(cfg.Env)

	client, err := app.NewClient(cfg, logger, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to configure payson client: %v", err)
	}

	processor, err := app.NewProcessor(cfg, client, logger, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to configure processor: %v", err)
	}

	lambda.Start(processor.HandleAPIGateway)
}
