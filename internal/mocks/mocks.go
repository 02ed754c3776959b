package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"foodcycle-realtime/internal/models"
	"foodcycle-realtime/internal/repositories"
)

type DonationRepositoryMock struct {
	mock.Mock
}

func (m *DonationRepositoryMock) ListByStatus(ctx context.Context, status string) ([]models.DonationWithDonor, error) {
	args := m.Called(ctx, status)
	var list []models.DonationWithDonor
	if val := args.Get(0); val != nil {
		list = val.([]models.DonationWithDonor)
	}
	return list, args.Error(1)
}

func (m *DonationRepositoryMock) Get(ctx context.Context, donationID int) (models.DonationWithDonor, error) {
	args := m.Called(ctx, donationID)
	var donation models.DonationWithDonor
	if val := args.Get(0); val != nil {
		donation = val.(models.DonationWithDonor)
	}
	return donation, args.Error(1)
}

func (m *DonationRepositoryMock) Create(ctx context.Context, input repositories.DonationInput) (models.Donation, error) {
	args := m.Called(ctx, input)
	var donation models.Donation
	if val := args.Get(0); val != nil {
		donation = val.(models.Donation)
	}
	return donation, args.Error(1)
}

func (m *DonationRepositoryMock) UpdateStatus(ctx context.Context, donationID int, status string) error {
	args := m.Called(ctx, donationID, status)
	return args.Error(0)
}

func (m *DonationRepositoryMock) Delete(ctx context.Context, donationID int) error {
	args := m.Called(ctx, donationID)
	return args.Error(0)
}

func (m *DonationRepositoryMock) ListByDonor(ctx context.Context, donorID int) ([]models.Donation, error) {
	args := m.Called(ctx, donorID)
	var list []models.Donation
	if val := args.Get(0); val != nil {
		list = val.([]models.Donation)
	}
	return list, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) SaveMessage(ctx context.Context, msg models.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MessageRepositoryMock) ListConversation(ctx context.Context, userA, userB int) ([]models.Message, error) {
	args := m.Called(ctx, userA, userB)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

var _ repositories.DonationRepository = (*DonationRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
