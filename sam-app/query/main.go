package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	searchconfig "doc-search/config"
	"doc-search/service"
	"doc-search/service/query"
	"doc-search/telemetry"
)

const (
	defaultSecretID = "openai-api-key"
)

type lambdaHandler struct {
	engine *service.Engine
	logger *slog.Logger
}

func (l *lambdaHandler) handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	l.logger.InfoContext(ctx, "Handler started", slog.String("path", request.Path), slog.String("request_id", request.RequestContext.RequestID))

	var queryBody query.Request
	err := json.Unmarshal([]byte(request.Body), &queryBody)
	if err != nil {
		l.logger.WarnContext(ctx, "failed to parse request body", slog.Any("error", err))
		return l.respond(ctx, http.StatusBadRequest, query.ErrorResponse{Error: err.Error(), Kind: string(service.KindInvalidInput)}), nil
	}

	var response query.Response
	switch strings.TrimSuffix(request.Path, "/") {
	case "/basic":
		response, err = l.engine.BasicSearch(ctx, queryBody.Query)
	case "/with-gpt":
		response, err = l.engine.SynthesizedSearch(ctx, queryBody.Query)
	default:
		return l.respond(ctx, http.StatusNotFound, query.ErrorResponse{Error: "unknown path " + request.Path, Kind: string(service.KindNotFound)}), nil
	}
	if err != nil {
		kind := service.KindOf(err)
		l.logger.ErrorContext(ctx, "search failed", slog.Any("error", err), slog.String("kind", string(kind)))
		return l.respond(ctx, kind.StatusCode(), query.ErrorResponse{Error: service.PublicMessage(err), Kind: string(kind)}), nil
	}

	return l.respond(ctx, http.StatusOK, response), nil
}

func (l *lambdaHandler) respond(ctx context.Context, status int, body any) events.APIGatewayProxyResponse {
	responseBytes, err := json.Marshal(body)
	if err != nil {
		l.logger.ErrorContext(ctx, "serialize response", slog.Any("error", err))
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       "something went wrong building the response",
		}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(responseBytes),
	}
}

// loadAPIKey copies the OpenAI key out of Secrets Manager unless the environment already has one.
func loadAPIKey(ctx context.Context) error {
	if os.Getenv("OPENAI_API_KEY") != "" {
		return nil
	}

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return err
	}

	secretID := os.Getenv("OPENAI_SECRET_ID")
	if secretID == "" {
		secretID = defaultSecretID
	}

	smClient := secretsmanager.NewFromConfig(awsCfg)
	openaiSecret, err := smClient.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return err
	}
	return os.Setenv("OPENAI_API_KEY", aws.ToString(openaiSecret.SecretString))
}

func main() {
	ctx := context.Background()

	if err := loadAPIKey(ctx); err != nil {
		panic(err)
	}

	cfg, err := searchconfig.FromEnv()
	if err != nil {
		panic(err)
	}
	logger := telemetry.NewLogger(os.Stderr, cfg.LogLevel, "json")

	engine, err := service.Bootstrap(ctx, cfg, logger)
	if err != nil {
		panic(err)
	}

	handler := lambdaHandler{
		engine: engine,
		logger: logger,
	}

	lambda.Start(handler.handler)
}
