package main

// @title Retail POS API
// @version 1.0
// @description Point-of-sale backend: catalog, inventory, sales and reports.

// @BasePath /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
