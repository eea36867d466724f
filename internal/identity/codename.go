package identity

import "math/rand/v2"

var codenameAdjectives = []string{
	"Swift", "Bold", "Clever", "Silent", "Fierce",
	"Nimble", "Sly", "Daring", "Cunning", "Stealthy",
	"Quick", "Smooth", "Sharp", "Wise", "Slick",
	"Ghost", "Shadow", "Phantom", "Rogue", "Midnight",
}

var codenameColors = []string{
	"Silver", "Golden", "Crimson", "Violet", "Azure",
	"Emerald", "Obsidian", "Ruby", "Sapphire", "Onyx",
	"Copper", "Bronze", "Jade", "Pearl", "Amber",
	"Scarlet", "Indigo", "Ivory", "Ebony", "Steel",
}

var codenameAnimals = []string{
	"Phantom", "Viper", "Raven", "Fox", "Wolf",
	"Hawk", "Dragon", "Tiger", "Falcon", "Panther",
	"Cobra", "Eagle", "Lynx", "Jaguar", "Leopard",
	"Shadow", "Specter", "Whisper", "Echo", "Cipher",
}

// GenerateCodename builds a random adjective+color+animal codename in
// PascalCase, e.g. "SwiftSilverPhantom".
func GenerateCodename() string {
	adjective := codenameAdjectives[rand.IntN(len(codenameAdjectives))]
	color := codenameColors[rand.IntN(len(codenameColors))]
	animal := codenameAnimals[rand.IntN(len(codenameAnimals))]
	return adjective + color + animal
}
