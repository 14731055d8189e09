package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.requireMerchant)

	mux := pat.New()

	// Auth
	mux.Post("/auth/register", standardMiddleware.ThenFunc(app.authHandler.Register))
	mux.Post("/auth/login", standardMiddleware.ThenFunc(app.authHandler.Login))
	mux.Post("/merchants/device-token", authMiddleware.ThenFunc(app.merchantHandler.SaveDeviceToken))

	// Products
	mux.Post("/products", authMiddleware.ThenFunc(app.productHandler.CreateProduct))

	// Payment links
	mux.Post("/payment-links", authMiddleware.ThenFunc(app.linkHandler.CreatePaymentLink))
	mux.Get("/payment-links/:slug", standardMiddleware.ThenFunc(app.linkHandler.GetBySlug))

	// Payments
	mux.Post("/payments", standardMiddleware.ThenFunc(app.paymentHandler.CreatePayment))
	mux.Get("/payments/:id", standardMiddleware.ThenFunc(app.paymentHandler.GetPayment))
	mux.Post("/payments/:id/status", standardMiddleware.ThenFunc(app.paymentHandler.UpdatePaymentStatus))
	mux.Get("/payments/:id/receipt", standardMiddleware.ThenFunc(app.paymentHandler.DownloadReceipt))

	// Provider callback
	mux.Post("/webhooks/payments", standardMiddleware.ThenFunc(app.webhookHandler.MarkPaymentStatus))

	return mux
}
