package handler

import (
	"github.com/civicportal/admin-api/internal/core/domain"
	"github.com/civicportal/admin-api/internal/core/ports"
)

func toLocation(r locationRequest) domain.Location {
	return domain.Location{Address: r.Address, Coordinates: r.Coordinates}
}

func toReporter(r reporterRequest) domain.Reporter {
	return domain.Reporter{Name: r.Name, Email: r.Email, Phone: r.Phone}
}

func toFeedback(r *feedbackRequest) *domain.Feedback {
	if r == nil {
		return nil
	}
	return &domain.Feedback{Rating: r.Rating, Comment: r.Comment}
}

func toCreateIssueInput(r createIssueRequest, actor string) ports.CreateIssueInput {
	return ports.CreateIssueInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    domain.IssueCategory(r.Category),
		Priority:    domain.IssuePriority(r.Priority),
		Status:      domain.IssueStatus(r.Status),
		Location:    toLocation(r.Location),
		Reporter:    toReporter(r.Reporter),
		AssignedTo:  r.AssignedTo,
		Department:  r.Department,
		Images:      r.Images,
		Feedback:    toFeedback(r.Feedback),
		Actor:       actor,
	}
}

func toIssuePatch(r updateIssueRequest) domain.IssuePatch {
	p := domain.IssuePatch{
		Title:       r.Title,
		Description: r.Description,
		AssignedTo:  r.AssignedTo,
		Department:  r.Department,
		Images:      r.Images,
		Feedback:    toFeedback(r.Feedback),
	}
	if r.Category != nil {
		c := domain.IssueCategory(*r.Category)
		p.Category = &c
	}
	if r.Priority != nil {
		pr := domain.IssuePriority(*r.Priority)
		p.Priority = &pr
	}
	if r.Status != nil {
		s := domain.IssueStatus(*r.Status)
		p.Status = &s
	}
	if r.Location != nil {
		l := toLocation(*r.Location)
		p.Location = &l
	}
	if r.Reporter != nil {
		rep := toReporter(*r.Reporter)
		p.Reporter = &rep
	}
	return p
}

func toUserPatch(r updateUserRequest) domain.UserPatch {
	return domain.UserPatch{
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		Department: r.Department,
		Bio:        r.Bio,
	}
}
