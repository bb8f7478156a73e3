// Package common contains the logger and version information shared by every part of clipbot.
package common

import (
	"os"

	"github.com/joho/godotenv"
)

func init() {
	// a missing .env file is fine, everything can also come from the environment
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		panic(err)
	}

	InitLog()
}
