package trading

import "fmt"

// InvalidPriceError 매수 시점의 가격이 0 이하 — 무한대 잔고 대신 명시적 실패
type InvalidPriceError struct {
	Step  int
	Price float64
}

func (e InvalidPriceError) Error() string {
	return fmt.Sprintf("invalid price %g at step %d: buy requires a positive price", e.Price, e.Step)
}

// Result is the outcome of one simulation
type Result struct {
	FinalBalance float64 `json:"final_balance"`
	Trades       int     `json:"trades"`
}

// Simulate runs the 2-state trading machine over a one-step-ahead
// forecast against a realized price series and returns the final
// balance and trade count.
//
// prediction[i+1]은 step i 평가에 쓰이는 예측값이다. pred > curr이면
// 포지션을 토글한다: 안정 통화 보유 중이면 매수(balance /= curr),
// 위험 자산 보유 중이면 매도(balance *= curr). 매수/매도 모두 같은
// 부등식 하나로 트리거된다.
//
// 루프 종료 시 위험 자산을 들고 있으면 마지막 매수 가격(cost basis)으로
// 청산한다. mark-to-market 아님.
//
// Pure function: 독립 입력에 대해 동시 호출해도 안전하다.
func Simulate(prediction, actual []float64, startBalance float64) (Result, error) {
	balance := startBalance
	holdingRisk := false
	lastBuyPrice := 1.0
	trades := 0

	for i, curr := range actual {
		if i >= len(prediction)-1 {
			break
		}

		pred := prediction[i+1]
		if pred <= curr {
			continue
		}

		if !holdingRisk {
			if curr <= 0 {
				return Result{}, InvalidPriceError{Step: i, Price: curr}
			}
			balance /= curr
			lastBuyPrice = curr
			holdingRisk = true
		} else {
			balance *= curr
			holdingRisk = false
		}
		trades++
	}

	if holdingRisk {
		// 경계에서의 현재가가 없으므로 cost basis로 되돌린다
		balance *= lastBuyPrice
		holdingRisk = false
	}

	return Result{FinalBalance: balance, Trades: trades}, nil
}
