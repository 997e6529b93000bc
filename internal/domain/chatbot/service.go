// Package chatbot responde preguntas de cuidado de mascotas delegando en un modelo generativo.
package chatbot

import (
	"context"
	"errors"
	"strings"
	"time"

	"petora-connect/internal/platform/apperr"
	"petora-connect/internal/platform/logger"
	"petora-connect/internal/platform/metrics"
	"petora-connect/internal/ports/assistant"
)

const DefaultMaxQuestionLen = 1000

// SystemInstruction restringe el modelo a temas de cuidado de mascotas.
const SystemInstruction = `You are a specialized AI chatbot focused exclusively on providing helpful advice about pet care. ` +
	`Your role is to answer questions related to animal health, nutrition, behavior, grooming, and general well-being ` +
	`for common household pets like dogs, cats, birds, and rabbits.

Strictly adhere to the following rules:
1. Only answer questions that are directly related to pet care.
2. If a user asks a question that is NOT about pet care (e.g., about math, history, coding, or any other off-topic subject), you MUST politely decline to answer.
3. When declining, state that your purpose is limited to pet care questions. Do not attempt to answer the off-topic question.`

type Options struct {
	MaxQuestionLen int
	// Timeout por llamada al modelo; 0 = sin tope propio.
	Timeout time.Duration
	Log     logger.Logger
}

type Service struct {
	model   assistant.Model
	maxLen  int
	timeout time.Duration
	log     logger.Logger
}

// NewService acepta model nil: Ask responde upstream error (modelo no configurado).
func NewService(model assistant.Model, opts Options) *Service {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	if opts.MaxQuestionLen <= 0 {
		opts.MaxQuestionLen = DefaultMaxQuestionLen
	}
	return &Service{
		model:   model,
		maxLen:  opts.MaxQuestionLen,
		timeout: opts.Timeout,
		log:     log.With(map[string]any{"module": "chatbot"}),
	}
}

// Ask es stateless: cada pregunta va sola, sin historial.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	v := &apperr.ValidationError{}
	question = v.Length("question", question, 1, s.maxLen)
	if err := v.OrNil(); err != nil {
		metrics.ChatbotCalls.WithLabelValues("rejected").Inc()
		return "", err
	}

	if s.model == nil {
		metrics.ChatbotCalls.WithLabelValues("error").Inc()
		return "", apperr.Upstream("chatbot", assistant.ErrNotConfigured)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	answer, err := s.model.Generate(ctx, SystemInstruction, question)
	if err != nil {
		metrics.ChatbotCalls.WithLabelValues("error").Inc()
		if errors.Is(err, context.DeadlineExceeded) {
			s.log.Warn("chatbot timed out", map[string]any{"timeout": s.timeout.String()})
		}
		return "", apperr.Upstream("chatbot", err)
	}
	metrics.ChatbotCalls.WithLabelValues("ok").Inc()
	return strings.TrimSpace(answer), nil
}
