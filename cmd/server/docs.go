// Package main ClickCart Server API
//
//	@title						ClickCart Server API
//	@version					1.0
//	@description				Commerce, payment orchestration and webhook API
//
//	@contact.name				ClickCart Support
//	@contact.email				support@clickcart.dev
//
//	@host						localhost:8080
//	@BasePath					/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"
//
//	@tag.name					Order
//	@tag.description			Order management endpoints
//
//	@tag.name					Payment
//	@tag.description			Checkout and payment status endpoints
//
//	@tag.name					Webhook
//	@tag.description			Payment provider callback endpoints
package main
