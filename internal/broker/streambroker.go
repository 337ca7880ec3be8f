package broker

type publication struct {
	userID string
	tokens chan string
}

type subscription struct {
	userID string
	result chan chan string
}

// StreamBroker hands a stream of reply tokens from the producer to the first
// consumer. Subsequent consumers for the same user block until the producer is
// finished so that they can fall back to the persisted transcript.
//
// The producer is the goroutine spawned by the POST that starts an entity
// reply. The first consumer is the SSE handler streaming it out. Later
// consumers are usually reconnects after a dropped connection; for them the
// complete reply from storage beats a half-missed stream.
type StreamBroker struct {
	stopChannel      chan struct{}
	publishChannel   chan publication
	unpublishChannel chan string
	subscribeChannel chan subscription
}

// NewStreamBroker creates a broker. Call Start in a goroutine and Stop to
// shut it down.
func NewStreamBroker() *StreamBroker {
	return &StreamBroker{
		stopChannel:      make(chan struct{}),
		publishChannel:   make(chan publication),
		unpublishChannel: make(chan string),
		subscribeChannel: make(chan subscription),
	}
}

// Start listens for publish, unpublish, and subscribe events. Blocks until
// Stop is called. It does not handle panics, so wrap it in a recover.
func (b *StreamBroker) Start() {
	publishedStreams := map[string]chan string{}
	subscriberLists := map[string][]chan chan string{}
	for {
		select {
		case <-b.stopChannel:
			return

		case sub := <-b.subscribeChannel:
			tokens := publishedStreams[sub.userID]
			if tokens == nil {
				// Signal to the subscriber that the producer is finished (or hasn't started yet).
				close(sub.result)
				break
			}
			subscribers := subscriberLists[sub.userID]
			if subscribers == nil {
				// First subscriber gets the live stream.
				subscriberLists[sub.userID] = []chan chan string{sub.result}
				sub.result <- tokens
			} else {
				// Subsequent subscribers block until the producer is finished.
				subscriberLists[sub.userID] = append(subscribers, sub.result)
			}

		case pub := <-b.publishChannel:
			publishedStreams[pub.userID] = pub.tokens

		case userID := <-b.unpublishChannel:
			// Release subscribers still waiting for the producer.
			if waiting := subscriberLists[userID]; len(waiting) > 1 {
				for _, w := range waiting[1:] {
					close(w)
				}
			}
			delete(publishedStreams, userID)
			delete(subscriberLists, userID)
		}
	}
}

// Stop the goroutine that handles the broker.
func (b *StreamBroker) Stop() {
	close(b.stopChannel)
}

// Subscribe to the user's in-flight reply. The returned channel yields the
// token stream, or is closed without a value when no reply is streaming or
// another consumer already holds the stream and the producer has finished.
func (b *StreamBroker) Subscribe(userID string) chan chan string {
	result := make(chan chan string, 1)
	b.subscribeChannel <- subscription{
		userID: userID,
		result: result,
	}
	return result
}

// Publish announces an in-flight reply for the user. The token channel should
// be unbuffered so the producer blocks until a consumer attaches; give the
// producer a timeout if consumers are unreliable.
func (b *StreamBroker) Publish(userID string, tokens chan string) {
	b.publishChannel <- publication{
		userID: userID,
		tokens: tokens,
	}
}

// Unpublish removes the user's reply from the broker and releases any blocked
// subscribers.
func (b *StreamBroker) Unpublish(userID string) {
	b.unpublishChannel <- userID
}
