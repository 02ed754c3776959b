package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"foodcycle-realtime/internal/mocks"
	"foodcycle-realtime/internal/models"
	"foodcycle-realtime/internal/realtime"
	"foodcycle-realtime/internal/repositories"
)

func setupDonationRouter(handler *DonationHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/donations", handler.ListDonations)
	r.GET("/api/donations/:id", handler.GetDonation)
	r.POST("/api/donations", handler.CreateDonation)
	r.PATCH("/api/donations/:id", handler.UpdateDonationStatus)
	r.DELETE("/api/donations/:id", handler.DeleteDonation)
	r.GET("/api/users/:user_id/donations", handler.ListUserDonations)
	return r
}

func TestListDonationsSuccess(t *testing.T) {
	repo := new(mocks.DonationRepositoryMock)
	handler := NewDonationHandler(repo, nil)
	router := setupDonationRouter(handler)

	repo.On("ListByStatus", mock.Anything, "available").
		Return([]models.DonationWithDonor{{Donation: models.Donation{ID: 1, FoodName: "bread"}, DonorName: "alice"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/donations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]models.DonationWithDonor
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp["donations"], 1)
	require.Equal(t, "alice", resp["donations"][0].DonorName)
	repo.AssertExpectations(t)
}

func TestListDonationsInvalidStatus(t *testing.T) {
	handler := NewDonationHandler(new(mocks.DonationRepositoryMock), nil)
	router := setupDonationRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/donations?status=eaten", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDonationNotFound(t *testing.T) {
	repo := new(mocks.DonationRepositoryMock)
	handler := NewDonationHandler(repo, nil)
	router := setupDonationRouter(handler)

	repo.On("Get", mock.Anything, 99).Return(models.DonationWithDonor{}, repositories.ErrDonationNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/donations/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	repo.AssertExpectations(t)
}

func TestCreateDonationSuccess(t *testing.T) {
	repo := new(mocks.DonationRepositoryMock)
	hub := realtime.NewHub(4)
	watcher := hub.Admit(realtime.ConnMeta{})

	handler := NewDonationHandler(repo, hub)
	router := setupDonationRouter(handler)

	created := models.Donation{ID: 5, DonorID: 1, FoodName: "soup", Quantity: "3L", Status: models.DonationAvailable}
	repo.On("Create", mock.Anything, mock.MatchedBy(func(in repositories.DonationInput) bool {
		return in.DonorID == 1 && in.FoodName == "soup"
	})).Return(created, nil).Once()

	body := bytes.NewBufferString(`{"donor_id":1,"food_name":"soup","quantity":"3L"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/donations", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, watcher.Send, 1, "connected clients get notified on create")

	var out realtime.Envelope
	require.NoError(t, json.Unmarshal(<-watcher.Send, &out))
	assert.Equal(t, realtime.EventDonationNotification, out.Event)
	repo.AssertExpectations(t)
}

func TestCreateDonationMissingFields(t *testing.T) {
	handler := NewDonationHandler(new(mocks.DonationRepositoryMock), nil)
	router := setupDonationRouter(handler)

	body := bytes.NewBufferString(`{"donor_id":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/donations", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatusSuccess(t *testing.T) {
	repo := new(mocks.DonationRepositoryMock)
	handler := NewDonationHandler(repo, nil)
	router := setupDonationRouter(handler)

	repo.On("UpdateStatus", mock.Anything, 5, "reserved").Return(nil).Once()

	body := bytes.NewBufferString(`{"status":"reserved"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/donations/5", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestUpdateStatusInvalidValue(t *testing.T) {
	handler := NewDonationHandler(new(mocks.DonationRepositoryMock), nil)
	router := setupDonationRouter(handler)

	body := bytes.NewBufferString(`{"status":"expired"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/donations/5", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatusNotFound(t *testing.T) {
	repo := new(mocks.DonationRepositoryMock)
	handler := NewDonationHandler(repo, nil)
	router := setupDonationRouter(handler)

	repo.On("UpdateStatus", mock.Anything, 99, "completed").Return(repositories.ErrDonationNotFound).Once()

	body := bytes.NewBufferString(`{"status":"completed"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/donations/99", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	repo.AssertExpectations(t)
}

func TestDeleteDonationNotFound(t *testing.T) {
	repo := new(mocks.DonationRepositoryMock)
	handler := NewDonationHandler(repo, nil)
	router := setupDonationRouter(handler)

	repo.On("Delete", mock.Anything, 42).Return(repositories.ErrDonationNotFound).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/donations/42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	repo.AssertExpectations(t)
}

func TestListUserDonationsSuccess(t *testing.T) {
	repo := new(mocks.DonationRepositoryMock)
	handler := NewDonationHandler(repo, nil)
	router := setupDonationRouter(handler)

	repo.On("ListByDonor", mock.Anything, 7).Return([]models.Donation{{ID: 1, DonorID: 7}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/users/7/donations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}
