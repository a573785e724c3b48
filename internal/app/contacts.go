package app

import (
	"context"
	"fmt"

	"myaccount/internal/domain"
)

// ContactsService backs the Contacts tab: contact types, per-contact email
// notification settings, and removal of additional contacts. The contact rows
// themselves live on the shared profile record; this service only drives the
// operations around them.
type ContactsService struct {
	supplier domain.SupplierClient
	notify   domain.Notifier
}

func NewContactsService(supplier domain.SupplierClient, notify domain.Notifier) *ContactsService {
	return &ContactsService{supplier: supplier, notify: notify}
}

func (s *ContactsService) ContactTypes(ctx context.Context) ([]domain.ContactType, error) {
	return s.supplier.GetContactTypes(ctx)
}

func (s *ContactsService) EmailNotifications(ctx context.Context, contactID int64) ([]domain.NotificationSetting, error) {
	return s.supplier.GetEmailNotifications(ctx, contactID)
}

func (s *ContactsService) SaveEmailNotifications(ctx context.Context, contactID int64, settings []domain.NotificationSetting) error {
	if err := s.supplier.SaveEmailNotifications(ctx, contactID, settings); err != nil {
		s.notify.Error("Failed to update email notifications")
		return fmt.Errorf("save email notifications: %w", err)
	}
	s.notify.Success("Email notifications updated")
	return nil
}

func (s *ContactsService) DeleteContact(ctx context.Context, contactID int64) error {
	if err := s.supplier.DeleteContact(ctx, contactID); err != nil {
		s.notify.Error("Failed to delete contact")
		return fmt.Errorf("delete contact %d: %w", contactID, err)
	}
	s.notify.Success("Contact deleted")
	return nil
}
