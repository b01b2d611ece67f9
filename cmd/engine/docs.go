package main

//go:generate swag init -g cmd/engine/main.go -o docs

// @title           Magic Market Engine API
// @version         0.1.0
// @description     Binary-outcome prediction markets on a constant-product AMM: trading, liquidity, resolution, claims, and settlement-bridge controls.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
