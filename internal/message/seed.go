package message

import "context"

// SeedDevMessages loads a couple of sample messages into the memory store so
// a local server can accept jobs without an upstream message catalog.
func SeedDevMessages(s *InMemory) {
	ctx := context.Background()
	msgs := []Message{
		{
			Ref:     "msg-infrastructure-2026",
			Subject: "Support the local transit funding bill",
			Body:    "As your constituent, I urge you to vote for the pending transit funding bill.",
		},
		{
			Ref:     "msg-broadband-access",
			Subject: "Expand rural broadband access",
			Body:    "Please prioritize broadband infrastructure for underserved districts.",
		},
	}
	for _, m := range msgs {
		_ = s.Put(ctx, m)
	}
}
