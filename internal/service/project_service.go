package service

import (
	"context"
	"fmt"

	"github.com/andalize/proptic/internal/domain"
	"github.com/andalize/proptic/internal/events"
	"github.com/andalize/proptic/internal/repository"

	"go.uber.org/zap"
)

// ProjectService manages property projects.
type ProjectService struct {
	projects repository.ProjectsRepository
	events   *events.Emitter
	logger   *zap.Logger
}

func NewProjectService(projects repository.ProjectsRepository, emitter *events.Emitter, logger *zap.Logger) *ProjectService {
	return &ProjectService{projects: projects, events: emitter, logger: logger}
}

// ProjectInput is the writable part of a project. Nil fields are unchanged.
type ProjectInput struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	Description *string `json:"description"`
	CoverImage  *string `json:"cover_image"`
}

func (s *ProjectService) ListProjects(ctx context.Context, req PageRequest) (*Page[ProjectView], error) {
	req = req.normalize()
	items, total, err := s.projects.ListProjects(ctx, req.Page, req.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	if err := checkPage(req, total); err != nil {
		return nil, err
	}
	out := make([]ProjectView, 0, len(items))
	for _, p := range items {
		out = append(out, projectView(p))
	}
	return &Page[ProjectView]{Items: out, Total: total, Page: req.Page, Size: req.Size}, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id string) (*ProjectView, error) {
	p, err := s.projects.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	view := projectView(p)
	return &view, nil
}

// apply merges in into p. Names are trimmed and must be unique ignoring case.
func (s *ProjectService) apply(ctx context.Context, p *domain.PropertyProject, in ProjectInput, create bool) error {
	v := domain.NewValidationError()
	if in.Name != nil {
		name := trimmed(in.Name)
		if name == "" {
			v.Add("name", domain.MsgProjectNameEmpty)
		} else {
			exists, err := s.projects.ProjectNameExists(ctx, name, p.ID)
			if err != nil {
				return fmt.Errorf("failed to check project name: %w", err)
			}
			if exists {
				v.Add("name", domain.MsgProjectNameTaken)
			}
			p.Name = name
		}
	} else if create {
		v.Add("name", domain.MsgFieldRequired)
	}
	if in.Address != nil {
		p.Address = trimmed(in.Address)
	} else if create {
		v.Add("address", domain.MsgFieldRequired)
	}
	if in.Description != nil {
		p.Description = nullString(trimmed(in.Description))
	}
	if in.CoverImage != nil {
		p.CoverImage = nullString(trimmed(in.CoverImage))
	}
	return v.OrNil()
}

func (s *ProjectService) CreateProject(ctx context.Context, in ProjectInput) (*ProjectView, error) {
	p := &domain.PropertyProject{}
	if err := s.apply(ctx, p, in, true); err != nil {
		return nil, err
	}
	if err := s.projects.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	s.logger.Info("Project created", zap.String("project_id", p.ID), zap.String("name", p.Name))
	s.events.Emit(ctx, events.ProjectCreated, p.ID, map[string]any{"name": p.Name})
	view := projectView(p)
	return &view, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, id string, in ProjectInput) (*ProjectView, error) {
	p, err := s.projects.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, p, in, false); err != nil {
		return nil, err
	}
	if err := s.projects.UpdateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	view := projectView(p)
	return &view, nil
}

// DeleteProject removes the project and, through cascades, its units.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	if err := s.projects.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Project deleted", zap.String("project_id", id))
	s.events.Emit(ctx, events.ProjectDeleted, id, nil)
	return nil
}
