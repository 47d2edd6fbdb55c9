package services

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"firebase.google.com/go/messaging"

	"rentalBack/internal/models"
	"rentalBack/internal/repositories"
)

// FCMService pushes rental lifecycle events to the party that has to
// react to them: the renter learns about decisions and handover, the
// owner about payment, cancellation and return.
type FCMService struct {
	Client   *messaging.Client
	UserRepo *repositories.UserRepository
}

func NewFCMService(client *messaging.Client, userRepo *repositories.UserRepository) *FCMService {
	return &FCMService{Client: client, UserRepo: userRepo}
}

func (s *FCMService) RentalEvent(ctx context.Context, rental models.Rental, event string) {
	if s == nil || s.Client == nil {
		return
	}
	recipientID, title, body := rentalEventMessage(rental, event)
	if recipientID == 0 {
		return
	}
	user, err := s.UserRepo.GetUserByID(ctx, recipientID)
	if err != nil {
		log.Printf("fcm: load user %d: %v", recipientID, err)
		return
	}
	if user.FCMToken == nil || *user.FCMToken == "" {
		return
	}

	message := &messaging.Message{
		Token: *user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"event":     event,
			"rental_id": strconv.Itoa(rental.ID),
			"item_id":   strconv.Itoa(rental.ItemID),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "10",
			},
		},
	}
	if _, err := s.Client.Send(ctx, message); err != nil {
		log.Printf("fcm: send %s for rental %d: %v", event, rental.ID, err)
	}
}

func rentalEventMessage(rental models.Rental, event string) (recipientID int, title, body string) {
	switch event {
	case EventApproved:
		return rental.RenterID, "대여 승인", fmt.Sprintf("'%s' 대여 신청이 승인되었습니다. 결제를 진행해 주세요.", rental.ItemName)
	case EventRejected:
		return rental.RenterID, "대여 거절", fmt.Sprintf("'%s' 대여 신청이 거절되었습니다.", rental.ItemName)
	case EventPaid:
		return rental.OwnerID, "결제 완료", fmt.Sprintf("'%s' 대여 결제가 완료되었습니다.", rental.ItemName)
	case EventStarted:
		return rental.RenterID, "대여 시작", fmt.Sprintf("'%s' 대여가 시작되었습니다.", rental.ItemName)
	case EventReturned:
		return rental.OwnerID, "반납 완료", fmt.Sprintf("'%s' 반납이 완료되었습니다.", rental.ItemName)
	case EventCanceled:
		return rental.OwnerID, "대여 취소", fmt.Sprintf("'%s' 대여가 취소되었습니다.", rental.ItemName)
	}
	return 0, "", ""
}
