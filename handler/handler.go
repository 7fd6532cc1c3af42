package handler

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"minutes-worker/dto"
	"minutes-worker/service"
)

type ServiceDependencies struct {
	ProcessService service.Service
}

func JobHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var job dto.JobMessage
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal job message")
		return err
	}

	zerolog.Ctx(ctx).Info().Str("job_id", job.JobId.String()).Msg("received job message")

	return deps.ProcessService.Process(ctx, job)
}
