// Package resilience groups the fault-tolerance helpers used for outbound
// calls: circuitbreaker keeps a failing webhook channel or database from
// stalling requests, and retry repeats webhook deliveries that failed for
// transient reasons.
//
//	b := circuitbreaker.New(circuitbreaker.ForWebhook("slack"))
//	err := b.Do(func() error {
//		return retry.Do(ctx, retry.Webhook(), post)
//	})
package resilience
