package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/lobbyn/relay/internal/model"
)

func newClientCmd() *cobra.Command {
	var (
		serverURL   string
		displayName string
		tag         string
		region      string
	)

	cmd := &cobra.Command{
		Use:   "client",
		Short: "Connect to a relay as a test client",
		Long: `client performs the full authentication handshake against a running
relay and then bridges stdin to broadcast messages. Incoming messages are
printed to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), serverURL, nil)
			if err != nil {
				return fmt.Errorf("dial %s: %w", serverURL, err)
			}
			defer conn.Close()

			intro, err := json.Marshal(model.Introduce{
				DisplayName: displayName,
				Tag:         tag,
				Region:      region,
			})
			if err != nil {
				return err
			}
			if err := conn.WriteMessage(websocket.TextMessage, intro); err != nil {
				return err
			}

			_, challenge, err := conn.ReadMessage()
			if err != nil {
				return closeError(err)
			}

			fmt.Printf("challenge icon: %s\n", challenge)
			fmt.Println("set your profile icon to it in the game client, then press Enter")
			stdin := bufio.NewScanner(os.Stdin)
			stdin.Scan()

			if err := conn.WriteMessage(websocket.TextMessage, []byte(model.SignalVerify)); err != nil {
				return err
			}
			_, reply, err := conn.ReadMessage()
			if err != nil {
				return closeError(err)
			}
			if string(reply) != model.SignalVerified {
				return fmt.Errorf("unexpected reply: %s", reply)
			}
			fmt.Printf("verified as %s#%s — type to broadcast\n", displayName, tag)

			// Print everything the relay routes to us.
			go func() {
				for {
					_, data, err := conn.ReadMessage()
					if err != nil {
						fmt.Println(closeError(err))
						os.Exit(0)
					}
					var routed model.RoutedMessage
					if err := json.Unmarshal(data, &routed); err != nil {
						fmt.Printf("<< %s\n", data)
						continue
					}
					fmt.Printf("<< %s#%s [%s] %s\n",
						routed.SenderDisplayName, routed.SenderTag,
						routed.MessageType, routed.Payload)
				}
			}()

			for stdin.Scan() {
				payload, err := json.Marshal(stdin.Text())
				if err != nil {
					continue
				}
				envelope, err := json.Marshal(model.Envelope{
					RoutingType: model.RoutingBroadcast,
					MessageType: "chat",
					Payload:     payload,
				})
				if err != nil {
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, envelope); err != nil {
					return err
				}
			}
			return stdin.Err()
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "ws://localhost:8080/LOBBYN", "Relay websocket URL")
	cmd.Flags().StringVar(&displayName, "name", "", "Riot ID display name")
	cmd.Flags().StringVar(&tag, "tag", "", "Riot ID tag")
	cmd.Flags().StringVar(&region, "region", "", "Player region (e.g. NA1, EUW1)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("tag")
	_ = cmd.MarkFlagRequired("region")

	return cmd
}

// closeError renders a websocket close frame as a readable error
func closeError(err error) error {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return fmt.Errorf("connection closed (%d): %s", closeErr.Code, closeErr.Text)
	}
	return err
}
