package service

import (
	"context"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/dto"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/rag/loop"
)

type LoopRunner interface {
	Run(ctx context.Context, question, tenantID string) (*loop.Result, error)
}

type IVerifyService interface {
	Verify(ctx context.Context, userId string, req *dto.VerifyRequest) (*dto.VerifyResponse, error)
}

type verifyService struct {
	runner LoopRunner
}

func NewVerifyService(runner LoopRunner) IVerifyService {
	return &verifyService{runner: runner}
}

func (s *verifyService) Verify(ctx context.Context, userId string, req *dto.VerifyRequest) (*dto.VerifyResponse, error) {
	res, err := s.runner.Run(ctx, req.Question, userId)
	if err != nil {
		return nil, err
	}

	return &dto.VerifyResponse{
		Answer:        res.Answer,
		Status:        string(res.Status),
		EvidenceCount: res.EvidenceCount,
	}, nil
}
