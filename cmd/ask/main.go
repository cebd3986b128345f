// Command ask runs one query through the workflow and prints the answer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"meetingroom/app"
	"meetingroom/config"
	"meetingroom/utils"

	"go.uber.org/zap"
)

const exampleQuery = "본관 3층 A 회의실 내일 오후 2시부터 3시까지 비어 있어?"

func main() {
	trace := flag.Bool("trace", false, "print the visited states")
	flag.Parse()

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		query = exampleQuery
	}

	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	ctx := context.Background()
	application, err := app.New(ctx, &config.AppConfig, logger, app.Options{})
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer application.Close(ctx)

	rec, err := application.Workflow.Run(ctx, query)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	fmt.Println("질문:", query)
	if *trace {
		fmt.Println("경로:", strings.Join(rec.Trace, " → "))
	}
	fmt.Println("답변:", rec.FinalAnswer)
}
