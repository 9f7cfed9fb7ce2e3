package usecase

import (
	"github.com/engenharia-apr/aprd/pkg/domain/interfaces"
	"github.com/engenharia-apr/aprd/pkg/domain/model/config"
	"github.com/engenharia-apr/aprd/pkg/service/draft"
	"github.com/engenharia-apr/aprd/pkg/service/export"
)

type UseCases struct {
	repo     interfaces.Repository
	matrix   *config.RiskMatrix
	template *config.Template
	drafter  *draft.Service
	exporter *export.Service
}

type Option func(*UseCases)

// WithMatrix replaces the default risk matrix
func WithMatrix(matrix *config.RiskMatrix) Option {
	return func(uc *UseCases) {
		uc.matrix = matrix
	}
}

// WithTemplate sets the provenance stamped on finalized documents
func WithTemplate(template *config.Template) Option {
	return func(uc *UseCases) {
		uc.template = template
	}
}

// WithDrafter enables AI step drafting
func WithDrafter(drafter *draft.Service) Option {
	return func(uc *UseCases) {
		uc.drafter = drafter
	}
}

// WithExporter enables snapshot upload on export
func WithExporter(exporter *export.Service) Option {
	return func(uc *UseCases) {
		uc.exporter = exporter
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		matrix:   config.DefaultRiskMatrix(),
		template: config.DefaultTemplate(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Matrix exposes the active risk matrix for read-only use
func (uc *UseCases) Matrix() *config.RiskMatrix {
	return uc.matrix
}
