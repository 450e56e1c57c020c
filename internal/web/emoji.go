package web

import "hash/fnv"

var animals = []string{
	"🐵", "🐶", "🐺", "🦊", "🦝", "🐱", "🦁", "🐯", "🐴", "🦄",
	"🦓", "🦌", "🐮", "🐷", "🐗", "🐭", "🐹", "🐰", "🐻", "🐨",
	"🐼", "🦥", "🦦", "🦨", "🦘", "🦡", "🐔", "🐧", "🐦", "🦅",
	"🦆", "🦢", "🦉", "🦩", "🦚", "🦜", "🐸", "🐢", "🦎", "🐙",
	"🦑", "🦀", "🐳", "🐬", "🦭", "🐠", "🦋", "🐝",
}

// animalFor picks a stable emoji for a file within one session. A new session
// reshuffles the assignment.
func animalFor(sessionID, filename string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(filename))
	return animals[h.Sum32()%uint32(len(animals))]
}
