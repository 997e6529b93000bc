// @title Petora Connect API
// @version 1.0
// @description Marketplace de adopción de mascotas: publicaciones, grupos, posts, uploads y chatbot.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
