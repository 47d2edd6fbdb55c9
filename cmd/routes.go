package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.jwtAuth)

	mux := pat.New()

	// Users
	mux.Post("/user/sign_up", standardMiddleware.ThenFunc(app.userHandler.SignUp))
	mux.Post("/user/sign_in", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Post("/user/refresh", standardMiddleware.ThenFunc(app.userHandler.Refresh))
	mux.Put("/user/fcm_token", authMiddleware.ThenFunc(app.userHandler.UpdateFCMToken))

	// Items
	mux.Post("/item", authMiddleware.ThenFunc(app.itemHandler.CreateItem))
	mux.Post("/item/image", authMiddleware.ThenFunc(app.itemHandler.UploadItemImage))
	mux.Post("/item/filtered", standardMiddleware.ThenFunc(app.itemHandler.GetFilteredItems))
	mux.Get("/item/my", authMiddleware.ThenFunc(app.itemHandler.GetMyItems))
	mux.Get("/item/:id", standardMiddleware.ThenFunc(app.itemHandler.GetItemByID))
	mux.Put("/item/:id", authMiddleware.ThenFunc(app.itemHandler.UpdateItem))
	mux.Put("/item/:id/withdraw", authMiddleware.ThenFunc(app.itemHandler.WithdrawItem))
	mux.Put("/item/:id/republish", authMiddleware.ThenFunc(app.itemHandler.RepublishItem))

	// Rentals
	mux.Post("/rental", authMiddleware.ThenFunc(app.rentalHandler.RequestRental))
	mux.Get("/rental/my", authMiddleware.ThenFunc(app.rentalHandler.GetMyRentals))
	mux.Get("/rental/received", authMiddleware.ThenFunc(app.rentalHandler.GetReceivedRequests))
	mux.Put("/rental/:id/decision", authMiddleware.ThenFunc(app.rentalHandler.Decide))
	mux.Put("/rental/:id/cancel", authMiddleware.ThenFunc(app.rentalHandler.Cancel))
	mux.Put("/rental/:id/start", authMiddleware.ThenFunc(app.rentalHandler.Start))
	mux.Put("/rental/:id/return", authMiddleware.ThenFunc(app.rentalHandler.CompleteReturn))

	// Payments
	mux.Post("/payment/confirm", authMiddleware.ThenFunc(app.paymentHandler.ConfirmPayment))

	// Reviews
	mux.Post("/review", authMiddleware.ThenFunc(app.reviewHandler.CreateReview))
	mux.Get("/review/item/:item_id", standardMiddleware.ThenFunc(app.reviewHandler.GetReviewsByItemID))
	mux.Put("/review/:id", authMiddleware.ThenFunc(app.reviewHandler.UpdateReview))
	mux.Del("/review/:id", authMiddleware.ThenFunc(app.reviewHandler.DeleteReview))

	// Rental event stream
	mux.Get("/ws", http.HandlerFunc(app.serveWS))

	return mux
}
