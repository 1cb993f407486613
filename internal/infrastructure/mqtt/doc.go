// Package mqtt provides MQTT client connectivity for Lampnet Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publish-only message delivery to lamp gateways
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Lampnet uses MQTT as the outbound command channel from the Core to the
// LoRa gateways that drive the physical lamps. The channel is strictly
// publish-only: the Core never subscribes to device telemetry.
//
//	Lampnet Core → MQTT Broker → LoRa Gateways → Lamps
//
// # Security Considerations
//
//   - TLS is recommended for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.LampControl(7)
//	client.Publish(topic, []byte(`{"lamp_state":"ON","lamp_dim":80}`), 0, false)
package mqtt
