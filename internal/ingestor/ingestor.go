// Package ingestor pulls recent logs from Datadog and synthesizes input files
// for the triage pipeline, so runs can target a live monitoring system as well
// as uploads.
package ingestor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
	"github.com/crosscut-io/crosscut/internal/logfile"
	"github.com/rs/zerolog/log"
)

// Config authenticates against the Datadog API.
type Config struct {
	APIKey string
	AppKey string
}

func (c Config) Enabled() bool {
	return c.APIKey != "" && c.AppKey != ""
}

func NewClient(cfg Config) *datadog.APIClient {
	configuration := datadog.NewConfiguration()
	configuration.AddDefaultHeader("DD-APPLICATION-KEY", cfg.AppKey)
	return datadog.NewAPIClient(configuration)
}

// AuthContext attaches the API keys explicitly instead of reading the process
// environment inside the client.
func AuthContext(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, datadog.ContextAPIKeys, map[string]datadog.APIKey{
		"apiKeyAuth": {Key: cfg.APIKey},
		"appKeyAuth": {Key: cfg.AppKey},
	})
}

// Fetch retrieves all logs matching the query within the trailing window and
// flattens them into one synthetic log file, oldest first.
func Fetch(ctx context.Context, client *datadog.APIClient, query string, window time.Duration) (logfile.File, error) {
	if query == "" {
		query = "*"
	}
	to := time.Now()
	from := to.Add(-window)

	log.Info().
		Str("query", query).
		Str("from", from.Format(time.RFC3339)).
		Str("to", to.Format(time.RFC3339)).
		Msg("Fetching logs from Datadog")

	api := datadogV2.NewLogsApi(client)

	var allLogs []datadogV2.Log
	var cursor *string

	for {
		params := datadogV2.NewListLogsGetOptionalParameters()
		sort := datadogV2.LOGSSORT_TIMESTAMP_ASCENDING
		params.Sort = &sort
		params.FilterFrom = &from
		params.FilterTo = &to
		params.FilterQuery = &query

		if cursor != nil {
			params.PageCursor = cursor
		}

		resp, _, err := api.ListLogsGet(ctx, *params)
		if err != nil {
			return logfile.File{}, fmt.Errorf("datadog logs query: %w", err)
		}

		allLogs = append(allLogs, resp.Data...)

		if resp.Meta == nil || resp.Meta.Page == nil || resp.Meta.Page.After == nil {
			break
		}
		after := *resp.Meta.Page.After
		if after == "" {
			break
		}
		cursor = &after
	}

	log.Info().Int("logCount", len(allLogs)).Msg("Retrieved logs from Datadog")

	return logfile.File{
		Name:    "datadog.log",
		Content: Flatten(allLogs),
	}, nil
}

// Flatten renders Datadog log entries as plain text lines the extractor can
// scan.
func Flatten(logs []datadogV2.Log) string {
	var sb strings.Builder
	for _, l := range logs {
		if l.Attributes == nil {
			continue
		}
		a := l.Attributes
		if a.Timestamp != nil {
			sb.WriteString(a.Timestamp.Format(time.RFC3339))
			sb.WriteByte(' ')
		}
		if a.Status != nil {
			sb.WriteString(strings.ToUpper(*a.Status))
			sb.WriteByte(' ')
		}
		if a.Service != nil {
			sb.WriteString("[" + *a.Service + "] ")
		}
		if a.Host != nil {
			sb.WriteString("(" + *a.Host + ") ")
		}
		if a.Message != nil {
			sb.WriteString(*a.Message)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
