package utils

import "math/rand"

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// GenerateRandomToken returns a token used to mark ownership of a scheduling
// lock, so a lock is only released by the request that acquired it.
func GenerateRandomToken(length int) string {
	token := make([]rune, length)
	for i := range token {
		token[i] = letters[rand.Intn(len(letters))]
	}
	return string(token)
}
