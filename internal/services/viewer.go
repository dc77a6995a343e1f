package services

import "nuncio/internal/models"

// Viewer is the identity behind a request: either Anonymous or a Member.
// The set is closed; dispatch on it with a type switch.
type Viewer interface {
	isViewer()
}

type Anonymous struct{}

type Member struct {
	User *models.User
}

func (Anonymous) isViewer() {}
func (Member) isViewer() {}

// memberOf returns the acting user, or ErrUnauthenticated for guests.
func memberOf(v Viewer) (*models.User, error) {
	switch v := v.(type) {
	case Member:
		if v.User == nil || v.User.ID == 0 {
			return nil, ErrUnauthenticated
		}
		return v.User, nil
	case Anonymous:
		return nil, ErrUnauthenticated
	default:
		return nil, ErrUnauthenticated
	}
}

// UserOf returns the viewer's user for display purposes, or nil.
func UserOf(v Viewer) *models.User {
	u, err := memberOf(v)
	if err != nil {
		return nil
	}
	return u
}

// canModerate reports whether u may remove content owned by ownerID.
func canModerate(u *models.User, ownerID uint) bool {
	return u.ID == ownerID || u.IsAdmin()
}

// CanDeletePost reports whether the viewer may delete p.
func CanDeletePost(v Viewer, p *models.Post) bool {
	u := UserOf(v)
	return u != nil && canModerate(u, p.UserID)
}

// CanDeleteComment reports whether the viewer may delete cm, which sits on p.
func CanDeleteComment(v Viewer, p *models.Post, cm *models.Comment) bool {
	u := UserOf(v)
	return u != nil && (canModerate(u, cm.UserID) || p.UserID == u.ID)
}
