// Copyright (c) 2026 Safar. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package i18n

import "golang.org/x/text/language"

// # Client Flow Keys

const (
	InvalidIranMobile          = "errors.invalidIranMobile"
	InvalidInternationalMobile = "errors.invalidInternationalMobile"
	ServerConnection           = "errors.serverConnection"
	SendCodeError              = "errors.sendCodeError"
	VerificationCodeLength     = "errors.verificationCodeLength"
	InvalidVerificationCode    = "errors.invalidVerificationCode"
	EnterPassword              = "errors.enterPassword"
	InvalidPassword            = "errors.invalidPassword"
	SessionSave                = "errors.sessionSave"
	PasswordMinLength          = "changePassword.passwordMinLength"
	PasswordsNotMatch          = "changePassword.passwordsNotMatch"
	PasswordSetError           = "changePassword.error"
)

// # Backend Keys

const (
	ServerInvalidMobile         = "server.invalidMobile"
	ServerMobileRequired        = "server.mobileRequired"
	ServerMobileCodeRequired    = "server.mobileAndCodeRequired"
	ServerMobilePassRequired    = "server.mobileAndPasswordRequired"
	ServerUserExists            = "server.userExists"
	ServerNewUser               = "server.newUser"
	ServerCodeSent              = "server.codeSent"
	ServerInvalidCode           = "server.invalidCode"
	ServerInvalidPassword       = "server.invalidPassword"
	ServerAccountNotFound       = "server.accountNotFound"
	ServerLoginSuccess          = "server.loginSuccess"
	ServerSendRateLimited       = "server.sendRateLimited"
	ServerVerifyRateLimited     = "server.verifyRateLimited"
	ServerLoginRateLimited      = "server.loginRateLimited"
	ServerPasswordNotConfigured = "server.passwordNotConfigured"
	ServerNewPasswordRequired   = "server.newPasswordRequired"
	ServerPasswordAlreadySet    = "server.passwordAlreadySet"
	ServerPasswordSet           = "server.passwordSet"
	ServerRegistrationComplete  = "server.registrationComplete"
	ServerProfileInvalid        = "server.profileInvalid"
)

// dictionaries maps each language to its translations. English is complete;
// other languages may omit keys.
var dictionaries = map[language.Tag]map[string]string{
	language.English: {
		InvalidIranMobile:          "Enter a valid Iranian mobile number: 10 digits starting with 9.",
		InvalidInternationalMobile: "Enter a valid mobile number between 5 and 15 digits.",
		ServerConnection:           "Could not reach the server. Please try again.",
		SendCodeError:              "Could not send the verification code.",
		VerificationCodeLength:     "The verification code must be 6 digits.",
		InvalidVerificationCode:    "The verification code is not valid.",
		EnterPassword:              "Please enter your password.",
		InvalidPassword:            "The password is not valid.",
		SessionSave:                "Could not save your session on this device.",
		PasswordMinLength:          "The password must be at least 6 characters.",
		PasswordsNotMatch:          "The passwords do not match.",
		PasswordSetError:           "Could not set the password.",

		ServerInvalidMobile:         "The mobile number is not valid.",
		ServerMobileRequired:        "A mobile number is required.",
		ServerMobileCodeRequired:    "Mobile number and verification code are required.",
		ServerMobilePassRequired:    "Mobile number and password are required.",
		ServerUserExists:            "Account found.",
		ServerNewUser:               "New account.",
		ServerCodeSent:              "Verification code sent.",
		ServerInvalidCode:           "The verification code is not valid.",
		ServerInvalidPassword:       "The password is not valid.",
		ServerAccountNotFound:       "No account is registered for this number.",
		ServerLoginSuccess:          "Signed in successfully.",
		ServerSendRateLimited:       "Too many code requests. Please try again in 1 minute.",
		ServerVerifyRateLimited:     "Too many verification attempts. Please try again in 1 minute.",
		ServerLoginRateLimited:      "Too many sign-in attempts. Please try again in 1 minute.",
		ServerPasswordNotConfigured: "This account has no password. Sign in with a verification code.",
		ServerNewPasswordRequired:   "Mobile number and new password are required.",
		ServerPasswordAlreadySet:    "A password is already set for this account.",
		ServerPasswordSet:           "Password set successfully.",
		ServerRegistrationComplete:  "Registration completed.",
		ServerProfileInvalid:        "Some profile fields are too long.",
	},
	language.Persian: {
		InvalidIranMobile:          "شماره موبایل معتبر وارد کنید: ۱۰ رقم که با ۹ شروع شود.",
		InvalidInternationalMobile: "شماره موبایل معتبر بین ۵ تا ۱۵ رقم وارد کنید.",
		ServerConnection:           "خطا در ارتباط با سرور. لطفاً دوباره تلاش کنید.",
		SendCodeError:              "خطا در ارسال کد تایید",
		VerificationCodeLength:     "کد تایید باید ۶ رقم باشد.",
		InvalidVerificationCode:    "کد تایید نامعتبر است",
		EnterPassword:              "لطفاً رمز عبور را وارد کنید.",
		InvalidPassword:            "رمز عبور نامعتبر است",
		SessionSave:                "ذخیره نشست روی این دستگاه ممکن نشد.",
		PasswordMinLength:          "رمز عبور باید حداقل ۶ کاراکتر باشد.",
		PasswordsNotMatch:          "رمز عبور و تکرار آن یکسان نیستند.",
		PasswordSetError:           "خطا در تعریف رمز عبور",

		ServerInvalidMobile:         "شماره موبایل معتبر نیست",
		ServerMobileRequired:        "شماره موبایل الزامی است",
		ServerMobileCodeRequired:    "شماره موبایل و کد تایید الزامی است",
		ServerMobilePassRequired:    "شماره موبایل و رمز عبور الزامی است",
		ServerUserExists:            "کاربر موجود است",
		ServerNewUser:               "کاربر جدید",
		ServerCodeSent:              "کد تایید ارسال شد",
		ServerInvalidCode:           "کد تایید نامعتبر است",
		ServerInvalidPassword:       "رمز عبور نامعتبر است",
		ServerAccountNotFound:       "کاربری با این شماره یافت نشد",
		ServerLoginSuccess:          "ورود موفقیت‌آمیز",
		ServerSendRateLimited:       "تعداد درخواست‌های ارسال کد بیش از حد مجاز است. لطفاً ۱ دقیقه دیگر تلاش کنید.",
		ServerVerifyRateLimited:     "تعداد درخواست‌های تأیید کد بیش از حد مجاز است. لطفاً ۱ دقیقه دیگر تلاش کنید.",
		ServerLoginRateLimited:      "تعداد درخواست‌های ورود بیش از حد مجاز است. لطفاً ۱ دقیقه دیگر تلاش کنید.",
		ServerPasswordNotConfigured: "برای این حساب رمز عبور تعریف نشده است. با کد تایید وارد شوید.",
		ServerNewPasswordRequired:   "شماره موبایل و رمز عبور جدید الزامی است",
		ServerPasswordAlreadySet:    "رمز عبور قبلاً تعریف شده است",
		ServerPasswordSet:           "رمز عبور با موفقیت تعریف شد",
		ServerRegistrationComplete:  "ثبت‌نام تکمیل شد",
		ServerProfileInvalid:        "برخی از فیلدهای پروفایل بیش از حد طولانی هستند",
	},
	language.Arabic: {
		InvalidIranMobile:          "أدخل رقم جوال إيراني صالحًا: 10 أرقام تبدأ بالرقم 9.",
		InvalidInternationalMobile: "أدخل رقم جوال صالحًا بين 5 و15 رقمًا.",
		ServerConnection:           "تعذر الاتصال بالخادم. يرجى المحاولة مرة أخرى.",
		SendCodeError:              "تعذر إرسال رمز التحقق.",
		VerificationCodeLength:     "يجب أن يتكون رمز التحقق من 6 أرقام.",
		InvalidVerificationCode:    "رمز التحقق غير صالح.",
		EnterPassword:              "يرجى إدخال كلمة المرور.",
		InvalidPassword:            "كلمة المرور غير صحيحة.",
		SessionSave:                "تعذر حفظ الجلسة على هذا الجهاز.",
		PasswordMinLength:          "يجب أن تتكون كلمة المرور من 6 أحرف على الأقل.",
		PasswordsNotMatch:          "كلمتا المرور غير متطابقتين.",
		PasswordSetError:           "تعذر تعيين كلمة المرور.",
	},
	language.Turkish: {
		InvalidIranMobile:          "Geçerli bir İran cep numarası girin: 9 ile başlayan 10 hane.",
		InvalidInternationalMobile: "5 ile 15 hane arasında geçerli bir cep numarası girin.",
		ServerConnection:           "Sunucuya ulaşılamadı. Lütfen tekrar deneyin.",
		SendCodeError:              "Doğrulama kodu gönderilemedi.",
		VerificationCodeLength:     "Doğrulama kodu 6 haneli olmalıdır.",
		InvalidVerificationCode:    "Doğrulama kodu geçersiz.",
		EnterPassword:              "Lütfen şifrenizi girin.",
		InvalidPassword:            "Şifre geçersiz.",
		SessionSave:                "Oturum bu cihaza kaydedilemedi.",
		PasswordMinLength:          "Şifre en az 6 karakter olmalıdır.",
		PasswordsNotMatch:          "Şifreler eşleşmiyor.",
		PasswordSetError:           "Şifre belirlenemedi.",
	},
}
