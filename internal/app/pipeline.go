package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/game"
	"github.com/ayusman/mudra/internal/gesture"
)

// runPipeline is the capture loop. It reads frames at an adaptive rate,
// wakes on motion, and converts recognizer output into the orchestrator's
// sensor samples.
//
// The loop idles at IdleFPS until motion is detected or a session is
// active, then runs at ActiveFPS. After IdleTimeout without either it
// drops back to the idle rate and stops calling the recognizer.
func (a *App) runPipeline(stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	active := false
	lastMotion := time.Now()
	var lastPred time.Time

	interval := time.Second / time.Duration(a.cfg.IdleFPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("app: read frame: %v", err)
				continue
			}

			moved, _ := a.motion.Detect(frame)
			if moved || a.sessionLive() {
				lastMotion = time.Now()
				if !active {
					active = true
					a.camera.SetFPS(a.cfg.ActiveFPS)
					ticker.Reset(time.Second / time.Duration(a.cfg.ActiveFPS))
					log.Println("app: active capture")
				}
			} else if active && time.Since(lastMotion) > a.cfg.IdleTimeout {
				active = false
				a.camera.SetFPS(a.cfg.IdleFPS)
				ticker.Reset(time.Second / time.Duration(a.cfg.IdleFPS))
				log.Println("app: idle capture")
			}

			if a.cfg.Preview {
				a.publishPreview(frame)
			}

			if !active {
				frame.Close()
				continue
			}

			now := time.Now()
			if a.cfg.PredInterval > 0 && now.Sub(lastPred) < a.cfg.PredInterval {
				frame.Close()
				continue
			}
			lastPred = now

			res, err := a.Recognizer().Recognize(frame)
			frame.Close()
			if err != nil {
				log.Printf("app: recognize: %v", err)
				continue
			}

			a.offerSamples(now, res)
		}
	}
}

// sessionLive reports whether the orchestrator has an armed session, which
// holds the pipeline at the active rate even with a perfectly still hand.
func (a *App) sessionLive() bool {
	if a.orch == nil {
		return false
	}
	return a.orch.Snapshot().Active != ""
}

// offerSamples fans one recognizer result out into the three sensor streams.
func (a *App) offerSamples(now time.Time, res classify.Result) {
	if a.orch == nil {
		return
	}

	a.orch.OfferPrediction(gesture.PredictionSample{
		Timestamp:   now,
		Probs:       res.Probs,
		TopClass:    res.TopClass,
		TopConf:     res.TopConf,
		HandPresent: res.HandPresent(),
	})

	hand := res.PrimaryHand()
	if hand == nil {
		a.orch.OfferSelection(gesture.SelectionSample{Timestamp: now, Zone: -1})
		return
	}

	tip := hand.Fingertip()
	a.orch.OfferPosition(game.HandPositionSample{
		Timestamp:   now,
		X:           tip.X,
		Y:           tip.Y,
		InHandSpace: classify.InHandSpace(tip.Y, a.cfg.HandSpaceFrac),
	})
	a.orch.OfferSelection(gesture.SelectionSample{
		Timestamp:   now,
		Zone:        classify.OptionZone(tip.X, tip.Y),
		Pinched:     classify.Pinched(hand),
		HandPresent: true,
	})
}

// publishPreview keeps the latest frame as JPEG for the MJPEG stream.
func (a *App) publishPreview(frame *gocv.Mat) {
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		log.Printf("app: encode preview: %v", err)
		return
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())

	a.frameMu.Lock()
	a.lastJPEG = data
	a.lastFrame = time.Now()
	a.frameMu.Unlock()
}
